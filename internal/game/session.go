package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minsu-kwon/boardsense/internal/accuracy"
	"github.com/minsu-kwon/boardsense/internal/analysis"
	"github.com/minsu-kwon/boardsense/internal/board"
	"github.com/minsu-kwon/boardsense/internal/feedback"
	"github.com/minsu-kwon/boardsense/internal/obslog"
	"github.com/minsu-kwon/boardsense/internal/opening"
	"github.com/minsu-kwon/boardsense/internal/source"
	"github.com/minsu-kwon/boardsense/pkg/assistdto"
)

// Sink receives frozen state views. The overlay client implements it.
type Sink interface {
	PushState(ctx context.Context, state *assistdto.StateView) error
	PushNotice(ctx context.Context, notice *assistdto.Notice) error
}

// Params wires a session together. Store, Repository and Sink are optional.
type Params struct {
	PlayerColor board.Color
	SampleDelay time.Duration

	Correlator *analysis.Correlator
	Cache      *accuracy.Cache
	Store      *accuracy.Store
	Repository *accuracy.Repository
	Matcher    *opening.Matcher
	Tracker    *opening.CounterTracker
	Sink       Sink
}

// Session is the per-game context: it owns the timeline, the analysis
// correlator and the accuracy cache, and is the single writer of all of
// them. One goroutine runs the event loop; position samples and engine
// messages are its only inputs.
type Session struct {
	playerColor board.Color
	sampleDelay time.Duration

	correlator *analysis.Correlator
	cache      *accuracy.Cache
	store      *accuracy.Store
	repo       *accuracy.Repository
	matcher    *opening.Matcher
	tracker    *opening.CounterTracker
	sink       Sink

	inboundCh chan analysis.Inbound

	gameID    string
	startedAt time.Time
	prev      *board.Snapshot
	timeline  []string
	lastMatch *opening.MatchResult
	lastFeed  *feedback.Feedback
	lastTrend accuracy.Trend
}

func NewSession(p Params) *Session {
	if p.SampleDelay <= 0 {
		p.SampleDelay = 150 * time.Millisecond
	}
	if !p.PlayerColor.Valid() {
		p.PlayerColor = board.White
	}
	if p.Tracker == nil {
		p.Tracker = opening.NewCounterTracker()
	}
	return &Session{
		playerColor: p.PlayerColor,
		sampleDelay: p.SampleDelay,
		correlator:  p.Correlator,
		cache:       p.Cache,
		store:       p.Store,
		repo:        p.Repository,
		matcher:     p.Matcher,
		tracker:     p.Tracker,
		sink:        p.Sink,
		inboundCh:   make(chan analysis.Inbound, 16),
		gameID:      uuid.NewString(),
		startedAt:   time.Now(),
		lastTrend:   accuracy.TrendNone,
	}
}

// HandleInbound enqueues one engine message for the event loop. Safe to call
// from the socket goroutine; messages are dropped rather than blocking it
// when the loop is stopped or saturated.
func (s *Session) HandleInbound(msg analysis.Inbound) {
	select {
	case s.inboundCh <- msg:
	default:
		obslog.L().Warn("engine_message_dropped",
			zap.String("game_id", s.gameID))
	}
}

// Run drains samples and engine messages until the context ends or the
// sample channel closes. Samples arriving while a delay is pending overwrite
// each other; only the latest is processed when the delay fires.
func (s *Session) Run(ctx context.Context, samples <-chan source.Sample) error {
	var pending *source.Sample
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sample, ok := <-samples:
			if !ok {
				samples = nil
				if pending == nil {
					return nil
				}
				continue
			}
			pending = &sample
			if timerC == nil {
				timer = time.NewTimer(s.sampleDelay)
				timerC = timer.C
			}
		case <-timerC:
			timer = nil
			timerC = nil
			if pending != nil {
				s.processSample(ctx, *pending)
				pending = nil
			}
			if samples == nil {
				return nil
			}
		case msg := <-s.inboundCh:
			s.handleInbound(ctx, msg)
		}
	}
}

func (s *Session) processSample(ctx context.Context, sample source.Sample) {
	if s.prev != nil && s.prev.Placement.Equal(sample.Placement) {
		return
	}
	if s.detectNewGame(sample) {
		s.resetGame(ctx)
	}
	if s.prev == nil {
		s.acceptFirst(ctx, sample)
		return
	}

	mv := board.InferMove(s.prev.Placement, sample.Placement)
	if mv == nil {
		// Ambiguous diff. The timeline is not appended and may stay
		// desynchronized until the next unambiguous sample.
		obslog.L().Warn("move_inference_ambiguous",
			zap.String("game_id", s.gameID),
			zap.Int("ply", s.prev.Ply))
		s.prev = &board.Snapshot{
			Placement:  sample.Placement.Clone(),
			SideToMove: s.resolveTurn(sample, nil),
			Ply:        s.prev.Ply,
			Timestamp:  sample.At,
		}
		return
	}

	played := mv.UCI()
	s.timeline = append(s.timeline, played)
	s.composeFeedback(played, mv.MovedColor)

	side := s.resolveTurn(sample, &mv.MovedColor)
	s.prev = &board.Snapshot{
		Placement:  sample.Placement.Clone(),
		SideToMove: side,
		Ply:        len(s.timeline),
		Timestamp:  sample.At,
	}

	s.updateOpening(side)
	s.requestAnalysis(ctx, side)
	s.publish(ctx)
}

func (s *Session) acceptFirst(ctx context.Context, sample source.Sample) {
	side := s.resolveTurn(sample, nil)
	s.prev = &board.Snapshot{
		Placement:  sample.Placement.Clone(),
		SideToMove: side,
		Ply:        0,
		Timestamp:  sample.At,
	}
	obslog.L().Info("game_started",
		zap.String("game_id", s.gameID),
		zap.String("side_to_move", string(side)))
	s.requestAnalysis(ctx, side)
	s.publish(ctx)
}

func (s *Session) resolveTurn(sample source.Sample, justMoved *board.Color) board.Color {
	sig := board.TurnSignals{
		Indicator: sample.Turn,
		MoveCount: sample.MoveCount,
		JustMoved: justMoved,
	}
	if s.prev != nil {
		prevSide := s.prev.SideToMove
		sig.Previous = &prevSide
	}
	return board.ResolveTurn(sig)
}

// detectNewGame spots a fresh game: the independently sourced move count
// went backwards, the board returned to the start position mid-game, or the
// sample claims a first move that differs from the recorded one.
func (s *Session) detectNewGame(sample source.Sample) bool {
	if len(s.timeline) == 0 {
		return false
	}
	if sample.MoveCount != nil && *sample.MoveCount < len(s.timeline) {
		return true
	}
	if sample.MoveCount != nil && *sample.MoveCount == 1 {
		mv := board.InferMove(board.StartingPlacement(), sample.Placement)
		if mv != nil && mv.UCI() != s.timeline[0] {
			return true
		}
	}
	return sample.Placement.Equal(board.StartingPlacement())
}

func (s *Session) resetGame(ctx context.Context) {
	s.archiveReport(ctx)
	if s.store != nil {
		if err := s.store.Drop(ctx, s.gameID); err != nil {
			obslog.L().Warn("accuracy_store_drop_failed",
				zap.String("game_id", s.gameID),
				zap.Error(err))
		}
	}

	obslog.L().Info("game_reset",
		zap.String("game_id", s.gameID),
		zap.Int("moves", len(s.timeline)))

	s.gameID = uuid.NewString()
	s.startedAt = time.Now()
	s.prev = nil
	s.timeline = nil
	s.lastMatch = nil
	s.lastFeed = nil
	s.lastTrend = accuracy.TrendNone
	if s.cache != nil {
		s.cache.Reset()
	}
	s.tracker.Reset()
	if s.correlator != nil {
		s.correlator.Reset()
	}
}

func (s *Session) archiveReport(ctx context.Context) {
	if s.repo == nil || s.cache == nil || len(s.timeline) == 0 {
		return
	}
	player := s.playerColor
	opponent := player.Opposite()
	playerSum := s.cache.Aggregate(&player)
	opponentSum := s.cache.Aggregate(&opponent)

	rep := &accuracy.Report{
		GameID:       s.gameID,
		PlayerColor:  player,
		Timeline:     append([]string(nil), s.timeline...),
		PlayerMean:   playerSum.Mean,
		OpponentMean: opponentSum.Mean,
		Counts:       playerSum.Counts,
		StartedAt:    s.startedAt,
		EndedAt:      time.Now(),
	}
	if s.lastMatch != nil {
		rep.OpeningName = s.lastMatch.Record.Name
		rep.OpeningECO = s.lastMatch.Record.ECO
	}
	if err := s.repo.SaveReport(ctx, rep); err != nil {
		obslog.L().Warn("report_archive_failed",
			zap.String("game_id", s.gameID),
			zap.Error(err))
	}
}

func (s *Session) composeFeedback(played string, moved board.Color) {
	if s.correlator == nil {
		return
	}
	active := s.correlator.Active()
	if active == nil || active.Ply != len(s.timeline)-1 {
		return
	}
	fb := feedback.Compose(active, played, moved)
	s.lastFeed = &fb
}

func (s *Session) updateOpening(side board.Color) {
	if s.matcher == nil {
		return
	}
	s.lastMatch = s.matcher.Match(s.timeline)
	responding := side == s.playerColor && len(s.timeline) >= 2
	s.tracker.Observe(s.lastMatch, responding)
}

func (s *Session) requestAnalysis(ctx context.Context, side board.Color) {
	if s.correlator == nil {
		return
	}
	fen := board.EncodeFEN(s.prev.Placement, side)
	if err := s.correlator.Request(ctx, len(s.timeline), side, s.timeline, fen); err != nil {
		s.notice(ctx, "analysis request failed")
	}
}

func (s *Session) handleInbound(ctx context.Context, msg analysis.Inbound) {
	if s.correlator == nil {
		return
	}
	switch m := msg.(type) {
	case *analysis.ResultMessage:
		side := board.White
		if s.prev != nil {
			side = s.prev.SideToMove
		}
		snap := s.correlator.HandleResult(m, side)
		if snap == nil {
			return
		}
		s.mergeAccuracy(ctx, snap.Accuracy)
		s.publish(ctx)
	case *analysis.ErrorMessage:
		s.correlator.HandleError(m)
		s.notice(ctx, "engine reported an error")
	}
}

func (s *Session) mergeAccuracy(ctx context.Context, entries []accuracy.Ply) {
	if s.cache == nil || len(entries) == 0 {
		return
	}
	inserted := s.cache.Merge(entries)
	if inserted > 0 && s.store != nil {
		if _, err := s.store.Merge(ctx, s.gameID, entries); err != nil {
			obslog.L().Warn("accuracy_store_merge_failed",
				zap.String("game_id", s.gameID),
				zap.Error(err))
		}
	}
	player := s.playerColor
	s.lastTrend = s.cache.AcceptAggregate(s.cache.Aggregate(&player))
}

func (s *Session) publish(ctx context.Context) {
	if s.sink == nil {
		return
	}
	state := s.stateView()
	if err := s.sink.PushState(ctx, state); err != nil {
		obslog.L().Warn("overlay_push_failed",
			zap.String("game_id", s.gameID),
			zap.Error(err))
	}
}

func (s *Session) notice(ctx context.Context, message string) {
	obslog.L().Warn("session_notice",
		zap.String("game_id", s.gameID),
		zap.String("message", message))
	if s.sink == nil {
		return
	}
	n := &assistdto.Notice{Level: "warn", Message: message}
	if err := s.sink.PushNotice(ctx, n); err != nil {
		obslog.L().Warn("overlay_notice_failed", zap.Error(err))
	}
}

func (s *Session) stateView() *assistdto.StateView {
	state := &assistdto.StateView{
		GameID:   s.gameID,
		Timeline: append([]string(nil), s.timeline...),
		At:       time.Now(),
	}
	if s.prev != nil {
		state.FEN = board.EncodeFEN(s.prev.Placement, s.prev.SideToMove)
	}
	if s.correlator != nil {
		state.Analysis = assistdto.AnalysisViewFrom(s.correlator.Active())
	}
	state.Feedback = assistdto.FeedbackViewFrom(s.lastFeed)
	if s.cache != nil {
		player := s.playerColor
		state.Accuracy = assistdto.AccuracyViewFrom(s.cache.Aggregate(&player), s.lastTrend)
	}
	state.Opening = assistdto.OpeningViewFrom(s.lastMatch, s.tracker, s.timeline)
	return state
}

// Timeline returns a copy of the moves played this game.
func (s *Session) Timeline() []string {
	return append([]string(nil), s.timeline...)
}

// SideToMove reports the currently resolved side, defaulting to white before
// the first sample.
func (s *Session) SideToMove() board.Color {
	if s.prev == nil {
		return board.White
	}
	return s.prev.SideToMove
}

func (s *Session) GameID() string { return s.gameID }

func (s *Session) OpeningMatch() *opening.MatchResult { return s.lastMatch }

func (s *Session) LastFeedback() *feedback.Feedback { return s.lastFeed }

func (s *Session) Tracker() *opening.CounterTracker { return s.tracker }
