package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"be04/pkg/recognize"
	"be04/pkg/scale"
)

// Quick manual check of the weight pipeline: resolve a literal text with
// -text, or run the full recognition chain against an image path.
func main() {
	text := flag.String("text", "", "resolve this recognized text instead of scanning an image")
	flag.Parse()

	if *text != "" {
		est := scale.ResolveFromText(*text)
		printEstimate(est)
		return
	}

	if flag.NArg() < 1 {
		fmt.Println("usage: go run ./tools/cmd/scale_test [-text \"...\"] <image-path>")
		os.Exit(2)
	}
	res := recognize.NewOrchestrator().ScanImage(context.Background(), flag.Arg(0))
	for _, at := range res.Attempts {
		fmt.Printf("attempt %-18s ok=%-5v %4dms %s\n", at.Method, at.Succeeded, at.ElapsedMs, at.ErrReason)
	}
	printEstimate(res.Estimate)
}

func printEstimate(est scale.Estimate) {
	if !est.Found() {
		fmt.Printf("no weight resolved (method=%s raw=%q)\n", est.Method, est.RawText)
		return
	}
	fmt.Printf("weight=%.3f kg confidence=%d source=%s method=%s\n", *est.ValueKg, est.Confidence, est.Source, est.Method)
}
