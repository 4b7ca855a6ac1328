package assistdto

import (
	"github.com/minsu-kwon/boardsense/internal/accuracy"
	"github.com/minsu-kwon/boardsense/internal/analysis"
	"github.com/minsu-kwon/boardsense/internal/feedback"
	"github.com/minsu-kwon/boardsense/internal/opening"
)

func AnalysisViewFrom(snap *analysis.Snapshot) *AnalysisView {
	if snap == nil {
		return nil
	}
	view := &AnalysisView{
		Ply:         snap.Ply,
		SideToMove:  string(snap.SideToMove),
		ChosenIndex: snap.ChosenIndex,
		Suggestions: make([]SuggestionView, 0, len(snap.Suggestions)),
	}
	for _, s := range snap.Suggestions {
		sv := SuggestionView{
			Rank:    s.Rank,
			MoveUCI: s.Move,
			ScoreCP: s.ScoreCP,
			PV:      append([]string(nil), s.PV...),
			Label:   s.Label,
			Safety:  s.Safety,
		}
		if s.Mate != nil {
			m := *s.Mate
			sv.Mate = &m
		}
		view.Suggestions = append(view.Suggestions, sv)
	}
	return view
}

func FeedbackViewFrom(fb *feedback.Feedback) *FeedbackView {
	if fb == nil {
		return nil
	}
	return &FeedbackView{
		Label:      string(fb.Label),
		PlayedMove: fb.PlayedMove,
		Rank:       fb.Rank,
		LossCP:     fb.LossCP,
		Message:    fb.Message,
	}
}

func AccuracyViewFrom(sum accuracy.Summary, trend accuracy.Trend) *AccuracyView {
	counts := make(map[string]int, len(sum.Counts))
	for cls, n := range sum.Counts {
		counts[string(cls)] = n
	}
	return &AccuracyView{
		Mean:   sum.Mean,
		Plies:  sum.Plies,
		Counts: counts,
		Trend:  string(trend),
	}
}

func OpeningViewFrom(match *opening.MatchResult, tracker *opening.CounterTracker, timeline []string) *OpeningView {
	if match == nil || match.Record == nil {
		return nil
	}
	view := &OpeningView{
		Name:       match.Record.Name,
		ECO:        match.Record.ECO,
		MatchedPly: match.MatchedPly,
		Exact:      match.Exact,
	}
	if tracker != nil {
		view.CounterState = string(tracker.State())
		for _, line := range tracker.Options() {
			view.CounterLines = append(view.CounterLines, line.Name)
		}
		view.SuggestedMove = tracker.SuggestedMove(timeline)
	}
	return view
}
