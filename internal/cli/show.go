package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tableview/internal/core"
	"github.com/JonMunkholm/tableview/internal/export"
	"github.com/JonMunkholm/tableview/internal/ingest"
)

// ShowOptions are the flags of the show command.
type ShowOptions struct {
	Key      []string
	Sort     string
	Desc     bool
	Natural  bool
	Group    string
	Collapse []string
	Filters  []string
	Hide     []string
	View     string
	Save     bool
	Export   string
	MaxWidth uint
}

func addShow(topLevel *cobra.Command, g *GlobalOptions) {
	o := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print a CSV, TSV or Parquet file as a table",
		Example: `
tableview show orders.csv --sort amount --desc
tableview show orders.csv --group region --collapse east
tableview show orders.csv --filter region=west,north --hide notes
tableview show orders.parquet --view weekly --save
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := o.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := o.restore(g, st); err != nil {
				return err
			}
			if err := o.Apply(st); err != nil {
				return err
			}
			if o.Save {
				if err := o.save(g, st); err != nil {
					return err
				}
			}
			if o.Export != "" {
				if err := exportFile(o.Export, st); err != nil {
					return err
				}
			}

			p := &Printer{MaxColWidth: o.MaxWidth}
			return p.Print(cmd.OutOrStdout(), st)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&o.Key, "key", nil, "Key columns used to keep rows apart.")
	f.StringVar(&o.Sort, "sort", "", "Column to sort by.")
	f.BoolVar(&o.Desc, "desc", false, "Sort descending.")
	f.BoolVar(&o.Natural, "natural", false, "Compare digit runs by numeric value.")
	f.StringVar(&o.Group, "group", "", "Column to group by.")
	f.StringSliceVar(&o.Collapse, "collapse", nil, "Group values to collapse.")
	f.StringArrayVar(&o.Filters, "filter", nil, "Only show rows where COLUMN is one of the values: COLUMN=V1,V2. Repeatable.")
	f.StringSliceVar(&o.Hide, "hide", nil, "Columns to hide.")
	f.StringVar(&o.View, "view", "", "Start from the settings saved under this name.")
	f.BoolVar(&o.Save, "save", false, "Save the resulting settings under --view.")
	f.StringVar(&o.Export, "export", "", "Also write the visible rows to a .csv or .parquet file.")
	f.UintVar(&o.MaxWidth, "width", 40, "Maximum printed column width.")

	topLevel.AddCommand(cmd)
}

func (o *ShowOptions) load(ctx context.Context, path string) (*core.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	model, err := ingest.Load(ctx, filepath.Base(path), f, ingest.Options{Key: o.Key})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	st := core.NewState(model, core.DefaultLayout())
	st.RefreshModel()
	return st, nil
}

// restore applies the settings saved under --view, if any.
func (o *ShowOptions) restore(g *GlobalOptions, st *core.State) error {
	if o.View == "" {
		return nil
	}
	s, err := g.openStore()
	if err != nil {
		return err
	}
	settings, err := s.Load(viewKey(o.View), st.Headers())
	if errors.Is(err, core.ErrSettingsNotFound) && o.Save {
		return nil
	}
	if err != nil {
		return err
	}
	if !st.AdoptSettings(settings) {
		return fmt.Errorf("view %q: %w", o.View, core.ErrSchemaMismatch)
	}
	return nil
}

func (o *ShowOptions) save(g *GlobalOptions, st *core.State) error {
	if o.View == "" {
		return errors.New("--save requires --view")
	}
	s, err := g.openStore()
	if err != nil {
		return err
	}
	return s.Save(viewKey(o.View), st.Headers(), st.Settings)
}

// Apply runs the flag settings through the view state. Grouping comes
// before sorting so that sorting by another column keeps the groups.
func (o *ShowOptions) Apply(st *core.State) error {
	headers := st.Headers()
	index := func(name string) (int, error) {
		for j, h := range headers {
			if h == name {
				return j, nil
			}
		}
		return 0, fmt.Errorf("%q: %w", name, core.ErrUnknownColumn)
	}

	for _, name := range o.Hide {
		j, err := index(name)
		if err != nil {
			return err
		}
		for pos, col := range st.Settings.ColumnOrdering {
			if col == j {
				st.SetColumnEnabled(pos, false)
			}
		}
	}

	for _, spec := range o.Filters {
		name, values, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("filter %q: want COLUMN=V1,V2", spec)
		}
		j, err := index(name)
		if err != nil {
			return err
		}
		allowed := make(map[string]bool)
		for _, v := range strings.Split(values, ",") {
			allowed[v] = true
		}
		st.Settings.Filters[j] = core.ColumnFilter{Enabled: true, AllowedValues: allowed}
		st.SettingsChanged = true
	}
	st.RefreshResults()

	if o.Natural {
		st.SetNaturalSort(true)
	}

	if o.Group != "" {
		j, err := index(o.Group)
		if err != nil {
			return err
		}
		if st.Settings.GroupedColumn != j {
			st.ToggleGroup(j)
		}
		for _, v := range o.Collapse {
			if !st.Settings.GroupCollapsed[v] {
				st.ToggleGroupCollapsed(v)
			}
		}
	}

	if o.Sort != "" {
		j, err := index(o.Sort)
		if err != nil {
			return err
		}
		ascending := !o.Desc
		if st.Settings.SortColumn != j || st.Settings.SortAscending != ascending {
			st.ToggleSort(j, ascending)
		}
	}
	return nil
}

func exportFile(path string, st *core.State) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		err = export.WriteParquet(f, st.Source, st.Results)
	default:
		err = export.WriteCSV(f, st.Source, st.Results)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// viewKey matches the names the server uses for saved views.
func viewKey(name string) string { return "named:" + name }
