package pricemodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/agrichain/pricecast/arima"
	"github.com/agrichain/pricecast/sarima"
)

const (
	// Schema identifies a serialised price model.
	Schema = "pricecast/sarima-model"
	// Version is the newest artifact layout this package writes and reads.
	Version = 1
)

// ErrCorruptArtifact is returned when a stored model cannot be decoded or
// fails validation.
var ErrCorruptArtifact = errors.New("corrupt model artifact")

const (
	kindARIMA  = "arima"
	kindSARIMA = "sarima"
)

type artifact struct {
	Schema     string        `json:"schema"`
	Version    int           `json:"version"`
	Crop       string        `json:"crop"`
	Key        string        `json:"key"`
	Stage      Stage         `json:"stage"`
	Order      Order         `json:"order"`
	BIC        *float64      `json:"bic,omitempty"`
	FirstMonth time.Time     `json:"first_month"`
	LastMonth  time.Time     `json:"last_month"`
	TrainedAt  time.Time     `json:"trained_at"`
	RunID      uuid.UUID     `json:"run_id"`
	Kind       string        `json:"kind"`
	ARIMA      *arima.State  `json:"arima,omitempty"`
	SARIMA     *sarima.State `json:"sarima,omitempty"`
}

// Marshal encodes a trained model as a versioned JSON artifact.
func Marshal(m *TrainedModel) ([]byte, error) {
	a := artifact{
		Schema:     Schema,
		Version:    Version,
		Crop:       m.info.Crop,
		Key:        m.info.Key,
		Stage:      m.info.Stage,
		Order:      m.order,
		FirstMonth: m.info.FirstMonth,
		LastMonth:  m.info.LastMonth,
		TrainedAt:  m.info.TrainedAt,
		RunID:      m.info.RunID,
	}
	if !math.IsNaN(m.bic) && !math.IsInf(m.bic, 0) {
		bic := m.bic
		a.BIC = &bic
	}

	switch est := m.est.(type) {
	case *arima.Model:
		state, err := est.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", m.info.Crop, err)
		}
		a.Kind = kindARIMA
		a.ARIMA = &state
	case *sarima.Model:
		state, err := est.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", m.info.Crop, err)
		}
		a.Kind = kindSARIMA
		a.SARIMA = &state
	default:
		return nil, fmt.Errorf("pricemodel: unsupported estimator %T", m.est)
	}

	return json.Marshal(a)
}

// Unmarshal decodes an artifact written by Marshal. Every failure matches
// ErrCorruptArtifact.
func Unmarshal(data []byte) (*TrainedModel, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}
	if a.Schema != Schema {
		return nil, fmt.Errorf("%w: schema %q", ErrCorruptArtifact, a.Schema)
	}
	if a.Version < 1 || a.Version > Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptArtifact, a.Version)
	}

	info := Info{
		Crop:       a.Crop,
		Key:        a.Key,
		Stage:      a.Stage,
		FirstMonth: a.FirstMonth,
		LastMonth:  a.LastMonth,
		TrainedAt:  a.TrainedAt,
		RunID:      a.RunID,
	}

	var (
		m   *TrainedModel
		err error
	)
	switch a.Kind {
	case kindARIMA:
		if a.ARIMA == nil {
			return nil, fmt.Errorf("%w: missing arima state", ErrCorruptArtifact)
		}
		est, rerr := arima.Restore(*a.ARIMA)
		if rerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, rerr)
		}
		m, err = FromARIMA(info, est)
	case kindSARIMA:
		if a.SARIMA == nil {
			return nil, fmt.Errorf("%w: missing sarima state", ErrCorruptArtifact)
		}
		est, rerr := sarima.Restore(*a.SARIMA)
		if rerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, rerr)
		}
		m, err = FromSARIMA(info, est)
	default:
		return nil, fmt.Errorf("%w: unknown estimator kind %q", ErrCorruptArtifact, a.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArtifact, err)
	}

	if m.order != a.Order {
		return nil, fmt.Errorf("%w: header order %s does not match estimator %s",
			ErrCorruptArtifact, a.Order, m.order)
	}
	return m, nil
}
