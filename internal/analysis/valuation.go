package analysis

import (
	"fmt"
	"strings"

	"investpath/internal/providers"
)

// Valuation assessments relative to the peer group.
const (
	AssessmentUndervalued  = "undervalued"
	AssessmentOvervalued   = "overvalued"
	AssessmentFairlyValued = "fairly valued"
)

// ValuationMetrics compares a subject's price multiples against its
// peer group averages.
type ValuationMetrics struct {
	Symbol            string   `json:"symbol"`
	PERatio           *float64 `json:"pe_ratio,omitempty"`
	PBRatio           *float64 `json:"pb_ratio,omitempty"`
	PeerAveragePE     *float64 `json:"peer_average_pe,omitempty"`
	PeerAveragePB     *float64 `json:"peer_average_pb,omitempty"`
	PEAssessment      string   `json:"pe_assessment,omitempty"`
	PBAssessment      string   `json:"pb_assessment,omitempty"`
	FairValueEstimate *float64 `json:"fair_value_estimate,omitempty"`
	Narrative         string   `json:"narrative"`
}

// CalculateValuations derives the subject's PE/PB (from reported
// ratios, or from price over EPS / book value when absent), averages
// the strictly positive peer ratios, and labels each multiple
// undervalued below 90% of the peer average, overvalued above 110%,
// fairly valued between. Fair value is peer-average PE times subject
// EPS when both exist. Without usable peers no comparison or estimate
// is produced.
func CalculateValuations(subject providers.Fundamentals, peers []providers.Fundamentals) ValuationMetrics {
	metrics := ValuationMetrics{
		Symbol:  subject.Symbol,
		PERatio: effectivePE(subject),
		PBRatio: effectivePB(subject),
	}

	metrics.PeerAveragePE = positiveAverage(peers, effectivePE)
	metrics.PeerAveragePB = positiveAverage(peers, effectivePB)

	var parts []string
	if metrics.PERatio != nil && metrics.PeerAveragePE != nil {
		metrics.PEAssessment = assess(*metrics.PERatio, *metrics.PeerAveragePE)
		parts = append(parts, fmt.Sprintf("PE %.2f vs peer average %.2f: %s",
			*metrics.PERatio, *metrics.PeerAveragePE, metrics.PEAssessment))
	}
	if metrics.PBRatio != nil && metrics.PeerAveragePB != nil {
		metrics.PBAssessment = assess(*metrics.PBRatio, *metrics.PeerAveragePB)
		parts = append(parts, fmt.Sprintf("PB %.2f vs peer average %.2f: %s",
			*metrics.PBRatio, *metrics.PeerAveragePB, metrics.PBAssessment))
	}

	if metrics.PeerAveragePE != nil && subject.EPS != nil {
		fair := *metrics.PeerAveragePE * *subject.EPS
		metrics.FairValueEstimate = &fair
		parts = append(parts, fmt.Sprintf("fair value estimate %.2f", fair))
	}

	if len(parts) == 0 {
		metrics.Narrative = "no peer comparison available"
	} else {
		metrics.Narrative = strings.Join(parts, "; ")
	}
	return metrics
}

func assess(ratio, peerAvg float64) string {
	switch {
	case ratio < peerAvg*0.9:
		return AssessmentUndervalued
	case ratio > peerAvg*1.1:
		return AssessmentOvervalued
	default:
		return AssessmentFairlyValued
	}
}

// effectivePE returns the reported PE, or price over EPS when the
// ratio is absent but both inputs are usable.
func effectivePE(f providers.Fundamentals) *float64 {
	if f.PERatio != nil {
		return f.PERatio
	}
	if f.EPS != nil && *f.EPS > 0 && f.Price > 0 {
		pe := f.Price / *f.EPS
		return &pe
	}
	return nil
}

func effectivePB(f providers.Fundamentals) *float64 {
	if f.PBRatio != nil {
		return f.PBRatio
	}
	if f.BookValuePerShare != nil && *f.BookValuePerShare > 0 && f.Price > 0 {
		pb := f.Price / *f.BookValuePerShare
		return &pb
	}
	return nil
}

// positiveAverage averages the strictly positive ratios across peers,
// or nil when no peer carries one.
func positiveAverage(peers []providers.Fundamentals, ratio func(providers.Fundamentals) *float64) *float64 {
	var sum float64
	var count int
	for _, peer := range peers {
		if r := ratio(peer); r != nil && *r > 0 {
			sum += *r
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}
