package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrichain/pricecast/farmdata"
	"github.com/agrichain/pricecast/pricemodel"
	"github.com/agrichain/pricecast/selection"
	"github.com/agrichain/pricecast/store"
	"github.com/agrichain/pricecast/timeseries"
)

type call struct {
	name   string
	points int
}

type fakeTrainer struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (f *fakeTrainer) SelectAndFit(_ context.Context, name string, series *timeseries.Series) (*pricemodel.TrainedModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{name, series.Len()})
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

type fakeRecorder struct {
	outcomes map[string]int
	points   map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{outcomes: map[string]int{}, points: map[string]int{}}
}

func (r *fakeRecorder) RecordOutcome(outcome string)              { r.outcomes[outcome]++ }
func (r *fakeRecorder) RecordSeriesPoints(crop string, points int) { r.points[crop] = points }

// writeFarm writes a CSV export with 24 monthly tomato batches alternating
// between 100 and 120, plus five months of corn.
func writeFarm(t *testing.T, dir, name string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("BatchID,CropType,HarvestDate,ModalPrice,FarmLocation\n")
	for i := 0; i < 24; i++ {
		price := 100
		if i%2 == 1 {
			price = 120
		}
		fmt.Fprintf(&b, "T-%02d,Tomato,%d-%02d-10,%d,North\n", i, 2022+i/12, i%12+1, price)
	}
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "C-%02d,Corn,2023-%02d-03,%d,South\n", i, i+1, 40+i)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunOutcomes(t *testing.T) {
	dir := t.TempDir()
	source := writeFarm(t, dir, "farm_a.csv")
	trainer := &fakeTrainer{}
	rec := newFakeRecorder()

	r := New(trainer, WithMetrics(rec))
	report, err := r.Run(context.Background(), []string{source}, []string{"tomato", "corn", "lettuce"})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, 1, report.Trained())
	assert.Equal(t, 2, report.Skipped())
	assert.Equal(t, 0, report.Failed())

	assert.Equal(t, []call{{"tomato_price", 24}}, trainer.calls)

	tomato, corn, lettuce := report.Outcomes[0], report.Outcomes[1], report.Outcomes[2]
	assert.Equal(t, StatusTrained, tomato.Status)
	assert.Equal(t, "tomato_price", tomato.Model)
	assert.Equal(t, StatusSkipped, corn.Status)
	assert.Equal(t, 5, corn.Points)
	assert.Contains(t, corn.Reason, "only 5 monthly points")
	assert.Equal(t, StatusSkipped, lettuce.Status)
	assert.Equal(t, 0, lettuce.Points)

	assert.Equal(t, map[string]int{"trained": 1, "skipped": 2}, rec.outcomes)
	assert.Equal(t, 24, rec.points["tomato_price"])
	assert.Equal(t, 5, rec.points["corn_price"])
}

func TestRunMinPointsAndSuffix(t *testing.T) {
	source := writeFarm(t, t.TempDir(), "farm_a.csv")
	trainer := &fakeTrainer{}

	r := New(trainer, WithMinPoints(5), WithModelSuffix("_modal"))
	report, err := r.Run(context.Background(), []string{source}, []string{"tomato", "corn"})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Trained())
	assert.Equal(t, []call{{"tomato_modal", 24}, {"corn_modal", 5}}, trainer.calls)
}

func TestRunContinuesAfterFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFarm(t, dir, "farm_b.csv")
	missing := filepath.Join(dir, "absent.csv")
	unsupported := filepath.Join(dir, "farm_c.json")
	require.NoError(t, os.WriteFile(unsupported, []byte("{}"), 0o644))

	boom := errors.New("boom")
	trainer := &fakeTrainer{err: boom}
	rec := newFakeRecorder()

	r := New(trainer, WithMetrics(rec))
	report, err := r.Run(context.Background(), []string{missing, unsupported, good}, []string{"tomato"})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, 3, report.Failed())
	assert.ErrorIs(t, report.Outcomes[0].Err, os.ErrNotExist)
	assert.Empty(t, report.Outcomes[0].Crop)
	assert.ErrorIs(t, report.Outcomes[1].Err, farmdata.ErrUnsupportedFormat)
	assert.ErrorIs(t, report.Outcomes[2].Err, boom)
	assert.Equal(t, "tomato", report.Outcomes[2].Crop)
	assert.Equal(t, 3, rec.outcomes["failed"])
}

func TestRunCanceled(t *testing.T) {
	source := writeFarm(t, t.TempDir(), "farm_a.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trainer := &fakeTrainer{}
	_, err := New(trainer).Run(ctx, []string{source}, []string{"tomato"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, trainer.calls)
}

func TestRunTrainsAndStores(t *testing.T) {
	dir := t.TempDir()
	source := writeFarm(t, dir, "farm_a.csv")
	models := store.NewFileStore(filepath.Join(dir, "models"))

	r := New(selection.New(models))
	report, err := r.Run(context.Background(), []string{source}, []string{"tomato"})
	require.NoError(t, err)
	require.Equal(t, 1, report.Trained())

	trained := report.Models()
	require.Len(t, trained, 1)
	assert.Equal(t, "tomato_price", trained[0].Crop())
	assert.Equal(t, pricemodel.StageNonSeasonal, trained[0].Stage())

	_, err = os.Stat(filepath.Join(dir, "models", "sarima_tomato_price_model.json"))
	assert.NoError(t, err)

	loaded, err := models.Load(context.Background(), "tomato_price")
	require.NoError(t, err)
	assert.Equal(t, 24, loaded.NObs())
}
