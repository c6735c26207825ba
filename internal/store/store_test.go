package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/shotlog/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "shotlog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestBeanLifecycle(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	roast := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	bean, err := st.CreateBean(ctx, "  Ethiopia Guji ", &roast)
	if err != nil {
		t.Fatalf("create bean: %v", err)
	}
	if bean.Name != "Ethiopia Guji" || !bean.IsActive || bean.ID == "" {
		t.Fatalf("unexpected bean: %+v", bean)
	}
	if _, err := st.CreateBean(ctx, "ethiopia guji", nil); err == nil {
		t.Fatalf("expected duplicate active name to fail")
	}
	if _, err := st.CreateBean(ctx, "   ", nil); err == nil {
		t.Fatalf("expected empty name to fail")
	}

	got, err := st.FindBean(ctx, "ETHIOPIA GUJI")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if got.ID != bean.ID {
		t.Fatalf("find by name returned %s, want %s", got.ID, bean.ID)
	}
	if got.RoastDate == nil || !got.RoastDate.Equal(roast) {
		t.Fatalf("unexpected roast date: %v", got.RoastDate)
	}
	if got.LastGrinderSetting != nil {
		t.Fatalf("expected no grinder setting yet, got %q", *got.LastGrinderSetting)
	}

	if err := st.DeactivateBean(ctx, bean.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, err := st.ListBeans(ctx, false)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active beans, got %d", len(active))
	}
	all, err := st.ListBeans(ctx, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 || all[0].IsActive {
		t.Fatalf("expected one archived bean, got %+v", all)
	}
	if _, err := st.FindBean(ctx, "Ethiopia Guji"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected archived bean to be hidden by name, got %v", err)
	}
	if _, err := st.CreateBean(ctx, "Ethiopia Guji", nil); err != nil {
		t.Fatalf("expected archived name to be reusable: %v", err)
	}
	if err := st.DeactivateBean(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertShotUpdatesBean(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bean, err := st.CreateBean(ctx, "Colombia", nil)
	if err != nil {
		t.Fatalf("create bean: %v", err)
	}

	stored, err := st.InsertShot(ctx, model.Shot{
		BeanID:                bean.ID,
		CoffeeWeightIn:        18,
		CoffeeWeightOut:       36.5,
		ExtractionTimeSeconds: 27,
		GrinderSetting:        "5.5",
		Notes:                 "bright",
	})
	if err != nil {
		t.Fatalf("insert shot: %v", err)
	}
	if stored.ID == "" || stored.Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp to be filled: %+v", stored)
	}

	got, err := st.GetShot(ctx, stored.ID)
	if err != nil {
		t.Fatalf("get shot: %v", err)
	}
	if got.CoffeeWeightOut != 36.5 || got.GrinderSetting != "5.5" || got.Notes != "bright" {
		t.Fatalf("unexpected shot: %+v", got)
	}
	if !got.Timestamp.Equal(stored.Timestamp) {
		t.Fatalf("timestamp mismatch: %v vs %v", got.Timestamp, stored.Timestamp)
	}

	bean, err = st.GetBean(ctx, bean.ID)
	if err != nil {
		t.Fatalf("get bean: %v", err)
	}
	if bean.LastGrinderSetting == nil || *bean.LastGrinderSetting != "5.5" {
		t.Fatalf("expected last grinder setting 5.5, got %v", bean.LastGrinderSetting)
	}
}

func TestInsertShotRejects(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.InsertShot(ctx, model.Shot{BeanID: "missing", CoffeeWeightIn: 18, CoffeeWeightOut: 36, GrinderSetting: "5"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing bean, got %v", err)
	}
	shots, err := st.ListShots(ctx, model.ShotFilter{})
	if err != nil {
		t.Fatalf("list shots: %v", err)
	}
	if len(shots) != 0 {
		t.Fatalf("expected failed insert to roll back, got %d shots", len(shots))
	}

	if _, err := st.InsertShot(ctx, model.Shot{BeanID: "b", CoffeeWeightIn: 0}); err == nil {
		t.Fatalf("expected invalid dose to fail")
	}
}

func TestListShotsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a, err := st.CreateBean(ctx, "A", nil)
	if err != nil {
		t.Fatalf("create bean: %v", err)
	}
	b, err := st.CreateBean(ctx, "B", nil)
	if err != nil {
		t.Fatalf("create bean: %v", err)
	}

	base := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	// Insert out of order so ordering comes from the timestamp column.
	for _, i := range []int{3, 0, 4, 1, 2} {
		beanID := a.ID
		if i%2 == 1 {
			beanID = b.ID
		}
		_, err := st.InsertShot(ctx, model.Shot{
			BeanID:                beanID,
			CoffeeWeightIn:        18,
			CoffeeWeightOut:       36,
			ExtractionTimeSeconds: 20 + i,
			GrinderSetting:        "5",
			Timestamp:             base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("insert shot %d: %v", i, err)
		}
	}

	all, err := st.ListShots(ctx, model.ShotFilter{})
	if err != nil {
		t.Fatalf("list shots: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 shots, got %d", len(all))
	}
	for i, s := range all {
		if s.ExtractionTimeSeconds != 20+i {
			t.Fatalf("shot %d out of order: %+v", i, s)
		}
	}

	onlyA, err := st.ListShots(ctx, model.ShotFilter{BeanID: a.ID})
	if err != nil {
		t.Fatalf("list bean shots: %v", err)
	}
	if len(onlyA) != 3 {
		t.Fatalf("expected 3 shots for A, got %d", len(onlyA))
	}

	since := base.Add(2 * time.Hour)
	recent, err := st.ListShots(ctx, model.ShotFilter{Since: &since, Last: 2})
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ExtractionTimeSeconds != 23 || recent[1].ExtractionTimeSeconds != 24 {
		t.Fatalf("unexpected recent shots: %+v", recent)
	}

	if err := st.DeleteShot(ctx, recent[1].ID); err != nil {
		t.Fatalf("delete shot: %v", err)
	}
	if _, err := st.GetShot(ctx, recent[1].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted shot to be gone, got %v", err)
	}
	if err := st.DeleteShot(ctx, recent[1].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUpdateBeanGrinderSetting(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bean, err := st.CreateBean(ctx, "Honduras", nil)
	if err != nil {
		t.Fatalf("create bean: %v", err)
	}
	if err := st.UpdateBeanGrinderSetting(ctx, bean.ID, "12"); err != nil {
		t.Fatalf("update setting: %v", err)
	}
	got, err := st.GetBean(ctx, bean.ID)
	if err != nil {
		t.Fatalf("get bean: %v", err)
	}
	if got.LastGrinderSetting == nil || *got.LastGrinderSetting != "12" {
		t.Fatalf("expected setting 12, got %v", got.LastGrinderSetting)
	}
	if err := st.UpdateBeanGrinderSetting(ctx, "missing", "12"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
