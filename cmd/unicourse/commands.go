package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/ncobase/unicourse/config"
	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/ctxutil"
	"github.com/ncobase/unicourse/loader"
	"github.com/ncobase/unicourse/version"
	"github.com/spf13/cobra"
)

const defaultReindexBatch = 500

var errNoCourses = errors.New("course store is not configured (set data.mongodb.master.uri)")

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "unicourse",
		Short:         "Course catalogue server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.SetPath(configFile)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")

	root.AddCommand(
		newServeCmd(),
		newBrowseCmd(),
		newSearchCmd(),
		newShowCmd(),
		newReindexCmd(),
		newVersionCmd(),
	)
	return root
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := InitializeApp()
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer cleanup()

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return app.Run(ctx)
		},
	}
}

func newBrowseCmd() *cobra.Command {
	var (
		f        course.FilterSet
		sort     string
		pageSize int
		pages    int
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List courses page by page through the result loader",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, cleanup, err := InitializeTools()
			if err != nil {
				return err
			}
			defer cleanup()
			if t.Courses == nil {
				return errNoCourses
			}

			f.Sort = course.SortKey(sort)
			if pageSize <= 0 {
				pageSize = t.Config.Loader.PageSize
			}

			out := cmd.OutOrStdout()
			opts := []loader.Option{
				loader.WithNotifier(t.Notifier),
				loader.WithLogger(t.Logger),
				loader.WithAutoLoadCap(t.Config.Loader.AutoLoadCap),
				loader.WithPageSize(pageSize),
			}
			if t.Config.Loader.SearchEndpoint != "" {
				opts = append(opts, loader.WithSearcher(t.Remote))
			}
			if verbose {
				opts = append(opts, loader.WithObserver(loader.ObserverFunc(func(s loader.State) {
					fmt.Fprintf(cmd.ErrOrStderr(), "state: page=%d items=%d busy=%t exhausted=%t\n",
						s.Page, len(s.Items), s.Busy, s.Exhausted)
				})))
			}
			l := loader.New(t.Courses, opts...)

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			ctx, _ = ctxutil.EnsureTraceID(ctx)

			if err := l.Apply(ctx, f, pageSize); err != nil {
				return err
			}
			for i := 1; i < pages && ctx.Err() == nil; i++ {
				if s := l.State(); s.Exhausted || s.SearchMode {
					break
				}
				l.LoadMore(ctx, loader.Explicit)
			}

			printState(out, l.State())
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.Discipline, "discipline", "", "discipline id")
	fl.StringVar(&f.Location, "location", "", "location id")
	fl.StringVar(&f.University, "university", "", "university id")
	fl.StringVarP(&f.Query, "query", "q", "", "free-text query")
	fl.StringVar(&sort, "sort", string(course.SortNameAsc), "name_asc, name_desc, uni_asc or city_asc")
	fl.IntVar(&pageSize, "page-size", 0, "page size (default from config)")
	fl.IntVar(&pages, "pages", 1, "number of pages to load")
	fl.BoolVarP(&verbose, "verbose", "v", false, "print every state change")
	return cmd
}

func printState(w io.Writer, s loader.State) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOURSE\tUNIVERSITY\tLOCATION")
	for _, c := range s.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.University.Name, c.Location.Name)
	}
	_ = tw.Flush()

	total := "unknown"
	if s.TotalKnown {
		total = fmt.Sprint(s.Total)
	}
	fmt.Fprintf(w, "\n%d shown, %s total, %d page(s), exhausted=%t\n", len(s.Items), total, s.Page, s.Exhausted)
}

func newSearchCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Run a course search against the engines or the remote endpoint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, cleanup, err := InitializeTools()
			if err != nil {
				return err
			}
			defer cleanup()

			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			ctx := cmd.Context()

			var items []course.Course
			if remote {
				items, err = t.Remote.Search(ctx, term)
			} else {
				items, err = t.Search.SearchCourses(ctx, term)
			}
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), loader.State{Items: items, Total: int64(len(items)), TotalKnown: true, Exhausted: true, Page: 1})
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "query the configured search endpoint instead of the engines")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the key facts of a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, cleanup, err := InitializeTools()
			if err != nil {
				return err
			}
			defer cleanup()
			if t.Courses == nil {
				return errNoCourses
			}

			c, err := t.Courses.FindByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printFacts(cmd.OutOrStdout(), *c)
			return nil
		},
	}
}

func printFacts(w io.Writer, c course.Course) {
	f := c.KeyFacts()
	class := course.NotAvailable
	if f.Class.Code != "" {
		class = f.Class.Code + " " + f.Class.Label
		if f.Class.CFU > 0 {
			class += fmt.Sprintf(" (%d CFU)", f.Class.CFU)
		}
	}
	url := f.URL
	if url == "" {
		url = course.NotAvailable
	}

	fmt.Fprintf(w, "%s\n\n", c.Name)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range [][2]string{
		{"University", f.University},
		{"City", f.City},
		{"Language", f.Language},
		{"Degree", f.DegreeType},
		{"Admission", f.Admission},
		{"Entrance", f.Entrance},
		{"Delivery", f.Delivery},
		{"Duration", f.Duration},
		{"Class", class},
		{"Academic year", f.AcademicYear},
		{"Website", url},
	} {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	_ = tw.Flush()
}

func newReindexCmd() *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Copy every course from MongoDB into the search engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, cleanup, err := InitializeTools()
			if err != nil {
				return err
			}
			defer cleanup()
			if t.Courses == nil {
				return errNoCourses
			}

			index := defaultIndex
			if sc := t.Config.Data.Search; sc != nil && sc.Index != "" {
				index = sc.Index
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			var n int
			err = t.Courses.ForEachBatch(ctx, batch, func(items []course.Course) error {
				docs := make([]any, len(items))
				for i, c := range items {
					docs[i] = c
				}
				if err := t.Data.Search.BulkIndex(ctx, index, docs); err != nil {
					return err
				}
				n += len(items)
				t.Logger.Infof(ctx, "indexed %d courses into %s", n, index)
				return nil
			})
			if err != nil {
				return fmt.Errorf("reindex after %d courses: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d courses\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", defaultReindexBatch, "documents per bulk request")
	return cmd
}

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetVersionInfo()
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return nil
			}
			s, err := info.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
