package source

import (
	"context"
	"time"

	"github.com/minsu-kwon/boardsense/internal/board"
)

// Sample is one full-board observation as delivered by whatever watches the
// host page. Turn and MoveCount are optional signals: not every game surface
// exposes them.
type Sample struct {
	Placement board.Placement
	Turn      *board.Color
	MoveCount *int
	At        time.Time
}

// Source delivers full-placement samples. Implementations close the channel
// when Run returns.
type Source interface {
	Samples() <-chan Sample
	Run(ctx context.Context) error
}
