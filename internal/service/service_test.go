package service

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/store"
)

const ordersCSV = "id,region,amount\n1,west,10\n2,east,30\n3,west,20\n"

func newTestService(t *testing.T, st *store.Store, opts Options) *Service {
	t.Helper()
	if opts.Layout == (core.Layout{}) {
		opts.Layout = core.DefaultLayout()
	}
	if opts.MaxConcurrentUploads == 0 {
		opts.MaxConcurrentUploads = 1
	}
	return New(nil, st, opts)
}

func addOrders(t *testing.T, s *Service) SourceInfo {
	t.Helper()
	info, err := s.AddUpload(context.Background(), "orders.csv", strings.NewReader(ordersCSV), []string{"id"})
	if err != nil {
		t.Fatalf("AddUpload() error = %v", err)
	}
	return info
}

func column(snap *Snapshot, k int) []string {
	var out []string
	for _, row := range snap.Grid {
		if row.Heading == nil {
			out = append(out, row.Cells[k])
		}
	}
	return out
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	open := func(context.Context) (core.Model, error) { return nil, nil }

	defs := []SourceDefinition{
		{Info: SourceInfo{Key: "upload:b", Group: GroupUpload}, Open: open},
		{Info: SourceInfo{Key: "pg:public.z", Group: GroupPostgres}, Open: open},
		{Info: SourceInfo{Key: "pg:public.a", Group: GroupPostgres}, Open: open},
	}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			t.Fatalf("Register(%s) error = %v", def.Info.Key, err)
		}
	}

	if err := r.Register(defs[0]); !errors.Is(err, core.ErrSourceExists) {
		t.Errorf("duplicate Register() error = %v, want ErrSourceExists", err)
	}

	var keys []string
	for _, info := range r.All() {
		keys = append(keys, info.Key)
	}
	want := []string{"pg:public.a", "pg:public.z", "upload:b"}
	if !slices.Equal(keys, want) {
		t.Errorf("All() keys = %v, want %v", keys, want)
	}

	if !r.Unregister("pg:public.z") {
		t.Error("Unregister() = false, want true")
	}
	if _, ok := r.Get("pg:public.z"); ok {
		t.Error("Get() after Unregister found the source")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestOpenViewAndOperations(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil, Options{})
	info := addOrders(t, s)

	snap, err := s.OpenView(ctx, info.Key)
	if err != nil {
		t.Fatalf("OpenView() error = %v", err)
	}
	if snap.TotalRows != 3 || len(snap.Grid) != 3 {
		t.Fatalf("TotalRows = %d, len(Grid) = %d, want 3 and 3", snap.TotalRows, len(snap.Grid))
	}
	id := snap.ID

	snap, err = s.ToggleSort(ctx, id, 2, false)
	if err != nil {
		t.Fatalf("ToggleSort() error = %v", err)
	}
	if got := column(snap, 0); !slices.Equal(got, []string{"2", "3", "1"}) {
		t.Errorf("ids by amount desc = %v, want [2 3 1]", got)
	}

	snap, err = s.ToggleGroup(ctx, id, 1)
	if err != nil {
		t.Fatalf("ToggleGroup() error = %v", err)
	}
	if len(snap.Results.GroupHeadings) != 2 {
		t.Fatalf("GroupHeadings = %+v, want 2", snap.Results.GroupHeadings)
	}
	if h := snap.Results.GroupHeadings[1]; h.Value != "west" || h.Count != 2 {
		t.Errorf("second heading = %+v, want west with 2 rows", h)
	}
	if slices.Contains(snap.Results.ColumnIndices, 1) {
		t.Errorf("ColumnIndices = %v, grouped column must be hidden", snap.Results.ColumnIndices)
	}

	snap, err = s.ResizeColumn(ctx, id, 0, 10)
	if err != nil {
		t.Fatalf("ResizeColumn() error = %v", err)
	}
	if w := snap.Settings.ColumnWidths[0]; w != 50 {
		t.Errorf("ColumnWidths[0] = %v, want clamp to 50", w)
	}

	if _, err := s.ToggleSort(ctx, id, 5, true); !errors.Is(err, core.ErrUnknownColumn) {
		t.Errorf("ToggleSort(5) error = %v, want ErrUnknownColumn", err)
	}
	if _, err := s.EditCell(ctx, id, 3, 0, "x"); !errors.Is(err, core.ErrInvalidRow) {
		t.Errorf("EditCell(row 3) error = %v, want ErrInvalidRow", err)
	}

	if err := s.CloseView(ctx, id); err != nil {
		t.Fatalf("CloseView() error = %v", err)
	}
	if _, err := s.Snapshot(ctx, id); !errors.Is(err, core.ErrViewNotFound) {
		t.Errorf("Snapshot() after close error = %v, want ErrViewNotFound", err)
	}
}

func TestUploadViewsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil, Options{})
	info := addOrders(t, s)

	a, _ := s.OpenView(ctx, info.Key)
	b, _ := s.OpenView(ctx, info.Key)

	if _, err := s.EditCell(ctx, a.ID, 0, 2, "99"); err != nil {
		t.Fatalf("EditCell() error = %v", err)
	}

	snap, err := s.Snapshot(ctx, b.ID)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := snap.Grid[0].Cells[2]; got != "10" {
		t.Errorf("other view cell = %q, want unchanged %q", got, "10")
	}
}

func TestMaxViews(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil, Options{MaxViews: 1})
	info := addOrders(t, s)

	if _, err := s.OpenView(ctx, info.Key); err != nil {
		t.Fatalf("first OpenView() error = %v", err)
	}
	if _, err := s.OpenView(ctx, info.Key); !errors.Is(err, core.ErrTooManyViews) {
		t.Errorf("second OpenView() error = %v, want ErrTooManyViews", err)
	}
	if _, err := s.OpenView(ctx, "upload:missing"); !errors.Is(err, core.ErrSourceNotFound) {
		t.Errorf("OpenView(missing) error = %v, want ErrSourceNotFound", err)
	}
}

func TestSettingsPersistence(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	s := newTestService(t, st, Options{})
	info := addOrders(t, s)

	first, _ := s.OpenView(ctx, info.Key)
	if _, err := s.ToggleSort(ctx, first.ID, 2, true); err != nil {
		t.Fatalf("ToggleSort() error = %v", err)
	}
	if err := s.CloseView(ctx, first.ID); err != nil {
		t.Fatalf("CloseView() error = %v", err)
	}

	second, err := s.OpenView(ctx, info.Key)
	if err != nil {
		t.Fatalf("OpenView() error = %v", err)
	}
	if second.Settings.SortColumn != 2 || !second.Settings.SortAscending {
		t.Errorf("restored sort = %d asc=%v, want 2 asc", second.Settings.SortColumn, second.Settings.SortAscending)
	}
	if got := column(second, 0); !slices.Equal(got, []string{"1", "3", "2"}) {
		t.Errorf("restored order = %v, want [1 3 2]", got)
	}
}

func TestNamedViews(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	s := newTestService(t, st, Options{})
	info := addOrders(t, s)

	a, _ := s.OpenView(ctx, info.Key)
	s.ToggleGroup(ctx, a.ID, 1)
	if err := s.SaveView(ctx, a.ID, "by region"); err != nil {
		t.Fatalf("SaveView() error = %v", err)
	}
	s.ResetGrouping(ctx, a.ID)

	if names := s.SavedViews(ctx); !slices.Equal(names, []string{"by region"}) {
		t.Errorf("SavedViews() = %v, want [by region]", names)
	}

	snap, err := s.LoadView(ctx, a.ID, "by region")
	if err != nil {
		t.Fatalf("LoadView() error = %v", err)
	}
	if snap.Settings.GroupedColumn != 1 {
		t.Errorf("GroupedColumn = %d, want 1", snap.Settings.GroupedColumn)
	}

	if _, err := s.LoadView(ctx, a.ID, "missing"); !errors.Is(err, core.ErrSettingsNotFound) {
		t.Errorf("LoadView(missing) error = %v, want ErrSettingsNotFound", err)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil, Options{})
	info := addOrders(t, s)
	snap, _ := s.OpenView(ctx, info.Key)

	s.SetColumnEnabled(ctx, snap.ID, 1, false)
	s.OpenFilter(ctx, snap.ID, 1)
	s.ToggleFilterValue(ctx, snap.ID, "east")

	var buf bytes.Buffer
	if err := s.Export(ctx, snap.ID, ExportCSV, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	want := "id,amount\n1,10\n3,20\n"
	if buf.String() != want {
		t.Errorf("Export() = %q, want %q", buf.String(), want)
	}

	if err := s.Export(ctx, snap.ID, "xlsx", &buf); !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Errorf("Export(xlsx) error = %v, want ErrUnsupportedFormat", err)
	}
}

// growingModel appends a row on every Sync.
type growingModel struct {
	*core.BasicModel
	syncs int
	fail  error
}

func (g *growingModel) Sync(context.Context) error {
	if g.fail != nil {
		return g.fail
	}
	g.syncs++
	return g.InsertRow([]string{string(rune('a' + g.syncs))})
}

func TestSyncViews(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil, Options{})

	base, err := core.NewBasicModel([]string{"name"}, "name")
	if err != nil {
		t.Fatalf("NewBasicModel() error = %v", err)
	}
	base.InsertRow([]string{"a"})
	model := &growingModel{BasicModel: base}

	s.Registry().Register(SourceDefinition{
		Info: SourceInfo{Key: "test:growing", Group: "test"},
		Open: func(context.Context) (core.Model, error) { return model, nil },
	})
	snap, err := s.OpenView(ctx, "test:growing")
	if err != nil {
		t.Fatalf("OpenView() error = %v", err)
	}

	synced, failed := s.SyncViews(ctx)
	if synced != 1 || failed != 0 {
		t.Errorf("SyncViews() = %d, %d, want 1, 0", synced, failed)
	}

	got, _ := s.Snapshot(ctx, snap.ID)
	if len(got.Grid) != 2 {
		t.Errorf("len(Grid) after sync = %d, want 2", len(got.Grid))
	}

	model.fail = errors.New("connection refused")
	if _, failed := s.SyncViews(ctx); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}

func TestExpireViews(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, nil, Options{SessionTTL: time.Minute})
	info := addOrders(t, s)

	snap, _ := s.OpenView(ctx, info.Key)

	if n := s.ExpireViews(ctx, time.Now()); n != 0 {
		t.Errorf("ExpireViews(now) = %d, want 0", n)
	}
	if n := s.ExpireViews(ctx, time.Now().Add(2*time.Minute)); n != 1 {
		t.Errorf("ExpireViews(+2m) = %d, want 1", n)
	}
	if _, err := s.Snapshot(ctx, snap.ID); !errors.Is(err, core.ErrViewNotFound) {
		t.Errorf("Snapshot() after expiry error = %v, want ErrViewNotFound", err)
	}
}
