package authority

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/sift/core"
)

const (
	// DefaultDamping is the probability of following a link rather than jumping.
	DefaultDamping = 0.85

	// DefaultIterations caps the number of power iterations.
	DefaultIterations = 20

	// DefaultTolerance is the per-node convergence threshold; iteration stops
	// once the L1 change between rounds falls below N times this value.
	DefaultTolerance = 1e-6
)

// Scores maps URL to authority.
type Scores map[string]float64

// Max returns the largest score, 0 for an empty table.
func (s Scores) Max() float64 {
	max := 0.0
	for _, v := range s {
		if v > max {
			max = v
		}
	}
	return max
}

// Sum returns the total of all scores.
func (s Scores) Sum() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

type settings struct {
	damping    float64
	iterations int
	tolerance  float64
	logger     *slog.Logger
}

// Option configures Compute.
type Option func(*settings) error

// WithDamping sets the damping factor, which must lie strictly between 0 and 1.
func WithDamping(d float64) Option {
	return func(s *settings) error {
		if d <= 0 || d >= 1 {
			return fmt.Errorf("damping must be in (0, 1), got %v", d)
		}
		s.damping = d
		return nil
	}
}

// WithIterations sets the iteration cap.
func WithIterations(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return fmt.Errorf("iterations must be positive, got %d", n)
		}
		s.iterations = n
		return nil
	}
}

// WithTolerance sets the per-node convergence threshold.
func WithTolerance(tol float64) Option {
	return func(s *settings) error {
		if tol < 0 {
			return fmt.Errorf("tolerance must not be negative, got %v", tol)
		}
		s.tolerance = tol
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// Compute runs power iteration over graph and returns a score for every key.
//
// Hitting the iteration cap before convergence is not an error; the last
// iterate is returned. A degenerate result (NaN or no mass) is replaced by
// the uniform distribution 1/N. An empty graph yields empty Scores.
func Compute(graph core.LinkGraph, opts ...Option) (Scores, error) {
	cfg := &settings{
		damping:    DefaultDamping,
		iterations: DefaultIterations,
		tolerance:  DefaultTolerance,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	logger := cfg.logger.With("component", "authority")

	n := len(graph)
	if n == 0 {
		return Scores{}, nil
	}

	nodes := make([]string, 0, n)
	for url := range graph {
		nodes = append(nodes, url)
	}
	slices.Sort(nodes)
	pos := make(map[string]int, n)
	for i, url := range nodes {
		pos[url] = i
	}

	// Closed subgraph: targets outside the crawl are dropped, duplicates collapse.
	out := make([][]int, n)
	for i, url := range nodes {
		seen := make(map[int]bool)
		for _, target := range graph[url] {
			j, ok := pos[target]
			if !ok || seen[j] {
				continue
			}
			seen[j] = true
			out[i] = append(out[i], j)
		}
	}

	N := float64(n)
	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1 / N
	}

	converged := false
	iter := 0
	for iter < cfg.iterations {
		iter++
		next := make([]float64, n)
		dangling := 0.0
		for i, targets := range out {
			if len(targets) == 0 {
				dangling += rank[i]
				continue
			}
			share := cfg.damping * rank[i] / float64(len(targets))
			for _, j := range targets {
				next[j] += share
			}
		}
		base := (1-cfg.damping)/N + cfg.damping*dangling/N
		delta := 0.0
		for i := range next {
			next[i] += base
			delta += math.Abs(next[i] - rank[i])
		}
		rank = next
		if delta < N*cfg.tolerance {
			converged = true
			break
		}
	}

	scores := make(Scores, n)
	total := 0.0
	for i, url := range nodes {
		scores[url] = rank[i]
		total += rank[i]
	}

	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		logger.Warn("degenerate authority scores, using uniform distribution", "nodes", n)
		for _, url := range nodes {
			scores[url] = 1 / N
		}
		return scores, nil
	}

	if !converged {
		logger.Info("authority did not converge within iteration cap", "iterations", iter)
	} else {
		logger.Debug("authority converged", "iterations", iter, "nodes", n)
	}
	return scores, nil
}
