package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wavestats/domain/core"
	"wavestats/domain/summary"
	"wavestats/internal/flatten"
	"wavestats/internal/merge"
	"wavestats/internal/notify"
	"wavestats/ports"

	"golang.org/x/sync/errgroup"
)

// ExportService flattens view inputs and hands the resulting tables to a
// TableExporter.
type ExportService struct {
	exporter ports.TableExporter
	notifier ports.Notifier
	parallel bool
}

// ExportOption configures an ExportService.
type ExportOption func(*ExportService)

// WithNotifier routes progress events to n.
func WithNotifier(n ports.Notifier) ExportOption {
	return func(s *ExportService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithParallel controls whether ExportAll runs views concurrently.
func WithParallel(parallel bool) ExportOption {
	return func(s *ExportService) { s.parallel = parallel }
}

// NewExportService creates an export service
func NewExportService(exporter ports.TableExporter, opts ...ExportOption) *ExportService {
	s := &ExportService{
		exporter: exporter,
		notifier: notify.Nop{},
		parallel: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ViewResult maps logical table keys to the artifact written for them. A nil
// artifact means the table had no rows and was not produced.
type ViewResult struct {
	View   ViewName                   `json:"view"`
	Tables map[string]*ports.Artifact `json:"tables"`
}

// Location returns the path written for key, if any.
func (r ViewResult) Location(key string) (string, bool) {
	if a := r.Tables[key]; a != nil {
		return a.Path, true
	}
	return "", false
}

// Artifacts returns the produced artifacts ordered by table key.
func (r ViewResult) Artifacts() []*ports.Artifact {
	keys := make([]string, 0, len(r.Tables))
	for k, a := range r.Tables {
		if a != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]*ports.Artifact, len(keys))
	for i, k := range keys {
		out[i] = r.Tables[k]
	}
	return out
}

// RunResult collects every view's result for one ExportAll call.
type RunResult struct {
	RunID     core.RunID              `json:"run_id"`
	StartedAt core.Timestamp          `json:"started_at"`
	Duration  time.Duration           `json:"duration"`
	Views     map[ViewName]ViewResult `json:"views"`
}

// pendingTable is a flattened table waiting to be written.
type pendingTable struct {
	key     string
	name    string
	records []summary.Record
}

// ExportView flattens and writes the tables of one view. All flattening
// happens before the first write, so malformed input never leaves a partial
// set of tables behind.
func (s *ExportService) ExportView(ctx context.Context, runID core.RunID, spec ViewSpec, in ViewInput) (ViewResult, error) {
	s.notifier.Notify(ports.Event{Kind: ports.EventViewStarted, RunID: runID, View: string(spec.Name)})

	tables, err := s.flattenView(spec, in)
	if err != nil {
		return ViewResult{}, s.fail(runID, spec.Name, "", err)
	}
	return s.writeView(ctx, runID, spec.Name, tables)
}

func (s *ExportService) fail(runID core.RunID, view ViewName, table string, err error) error {
	err = fmt.Errorf("%s view: %w", view, err)
	s.notifier.Notify(ports.Event{Kind: ports.EventViewFailed, RunID: runID, View: string(view), Table: table, Err: err})
	return err
}

func (s *ExportService) writeView(ctx context.Context, runID core.RunID, view ViewName, tables []pendingTable) (ViewResult, error) {
	result := ViewResult{View: view, Tables: make(map[string]*ports.Artifact, len(tables))}
	for _, t := range tables {
		artifact, err := s.exporter.Export(ctx, t.records, t.name)
		if err != nil {
			return ViewResult{}, s.fail(runID, view, t.key, err)
		}
		result.Tables[t.key] = artifact

		event := ports.Event{RunID: runID, View: string(view), Table: t.key}
		if artifact == nil {
			event.Kind = ports.EventTableSkipped
		} else {
			event.Kind = ports.EventTableSaved
			event.Path = artifact.Path
			event.Rows = artifact.Rows
		}
		s.notifier.Notify(event)
	}

	s.notifier.Notify(ports.Event{Kind: ports.EventViewCompleted, RunID: runID, View: string(view)})
	return result, nil
}

func (s *ExportService) flattenView(spec ViewSpec, in ViewInput) ([]pendingTable, error) {
	involvement, err := flatten.Involvement(in.Involvement, spec.Levels)
	if err != nil {
		return nil, err
	}
	tables := []pendingTable{{key: TableInvolvement, name: spec.InvolvementTable, records: involvement}}

	if spec.SplitOrigin {
		for _, node := range in.Origin {
			records, err := flatten.Origin(summary.OriginTree{node}, spec.Levels)
			if err != nil {
				return nil, err
			}
			if len(records) == 0 {
				continue
			}
			tables = append(tables, pendingTable{
				key:     TableOrigin + "/" + node.Label,
				name:    node.Label + "_" + spec.OriginTable,
				records: records,
			})
		}
	} else {
		records, err := flatten.Origin(in.Origin, spec.Levels)
		if err != nil {
			return nil, err
		}
		tables = append(tables, pendingTable{key: TableOrigin, name: spec.OriginTable, records: records})
	}

	tables = append(tables, pendingTable{key: TableTests, name: spec.TestsTable, records: merge.Merge(in.Tests...)})
	return tables, nil
}

// preparedView is a view whose tables are flattened and ready to write.
type preparedView struct {
	name   ViewName
	tables []pendingTable
}

// checkDestinations fails when two non-empty tables would be written under the
// same name. Per-protocol origin names embed the protocol label, so a label
// such as "treatment" can shadow another view's table.
func checkDestinations(views []preparedView) error {
	owners := make(map[string]string)
	for _, v := range views {
		for _, t := range v.tables {
			if len(t.records) == 0 {
				continue
			}
			owner := string(v.name) + "/" + t.key
			if first, ok := owners[t.name]; ok {
				return core.NewDuplicateTableError(t.name, first, owner)
			}
			owners[t.name] = owner
		}
	}
	return nil
}

// ExportAll exports every view of a. Views with no data still run and report
// nil artifacts. Every view is flattened and its destinations checked before
// anything is written. With parallel enabled the views are written
// concurrently and the first failure cancels the rest.
func (s *ExportService) ExportAll(ctx context.Context, a *summary.Analysis) (*RunResult, error) {
	if a == nil {
		a = &summary.Analysis{}
	}
	run := &RunResult{
		RunID:     core.NewRunID(),
		StartedAt: core.Now(),
	}

	meta, err := MetaInput(a.Meta)
	if err != nil {
		return nil, s.fail(run.RunID, ViewMeta, "", err)
	}

	jobs := []struct {
		spec  ViewSpec
		input ViewInput
	}{
		{PerProtocolView, PerProtocolInput(a.Protocols)},
		{TreatmentView, ComparisonInput(a.Treatment)},
		{OverallView, ComparisonInput(a.Overall)},
		{ProtoSpecificView, ProtoSpecificInput(a.ProtoSpecific)},
		{WithinGroupView, WithinGroupInput(a.WithinGroup)},
		{MetaView, meta},
	}

	views := make([]preparedView, 0, len(jobs))
	for _, job := range jobs {
		tables, err := s.flattenView(job.spec, job.input)
		if err != nil {
			return nil, s.fail(run.RunID, job.spec.Name, "", err)
		}
		views = append(views, preparedView{name: job.spec.Name, tables: tables})
	}
	if err := checkDestinations(views); err != nil {
		return nil, err
	}

	run.Views = make(map[ViewName]ViewResult, len(views))
	write := func(ctx context.Context, v preparedView) (ViewResult, error) {
		s.notifier.Notify(ports.Event{Kind: ports.EventViewStarted, RunID: run.RunID, View: string(v.name)})
		return s.writeView(ctx, run.RunID, v.name, v.tables)
	}

	if !s.parallel {
		for _, v := range views {
			res, err := write(ctx, v)
			if err != nil {
				return nil, err
			}
			run.Views[v.name] = res
		}
		run.Duration = run.StartedAt.Since()
		return run, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, v := range views {
		g.Go(func() error {
			res, err := write(gctx, v)
			if err != nil {
				return err
			}
			mu.Lock()
			run.Views[v.name] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	run.Duration = run.StartedAt.Since()
	return run, nil
}
