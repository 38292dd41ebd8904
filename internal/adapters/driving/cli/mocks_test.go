package cli

import (
	"bytes"
	"context"
	"sync"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
	"github.com/custodia-labs/wikiprox/internal/core/ports/driving"
)

type mockPublisher struct {
	doc       *domain.PublishableDocument
	err       error
	lastTitle string
	lastOpts  domain.RenderOptions
}

func (m *mockPublisher) Render(
	_ context.Context,
	title string,
	opts domain.RenderOptions,
) (*domain.PublishableDocument, error) {
	m.lastTitle = title
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

type mockSyncOrchestrator struct {
	plan       *domain.SyncPlan
	planErr    error
	report     *domain.SyncReport
	runErr     error
	history    []domain.SyncReport
	historyErr  error
	lastLimit   int
	lastTrigger domain.RunTrigger
}

func (m *mockSyncOrchestrator) Plan(_ context.Context) (*domain.SyncPlan, error) {
	if m.planErr != nil {
		return nil, m.planErr
	}
	if m.plan == nil {
		return &domain.SyncPlan{}, nil
	}
	return m.plan, nil
}

func (m *mockSyncOrchestrator) Run(_ context.Context, trigger domain.RunTrigger) (*domain.SyncReport, error) {
	m.lastTrigger = trigger
	if m.report == nil {
		return &domain.SyncReport{RunID: "run-1"}, m.runErr
	}
	return m.report, m.runErr
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{}, nil
}

func (m *mockSyncOrchestrator) History(_ context.Context, limit int) ([]domain.SyncReport, error) {
	m.lastLimit = limit
	return m.history, m.historyErr
}

type mockSettingsService struct {
	settings domain.Settings
	values   map[string]any
	unknown  []string
	setErr   error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultSettings(),
		values:   make(map[string]any),
	}
}

func (m *mockSettingsService) Get() (domain.Settings, error) {
	return m.settings, nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"origin.api_url", "sync.workers"}
}

func (m *mockSettingsService) Unknown() []string {
	return m.unknown
}

func (m *mockSettingsService) Path() string {
	return "/tmp/wikiprox/config.toml"
}

// mockScheduler blocks in Start until stopped or cancelled.
type mockScheduler struct {
	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	started   chan struct{}
	schedule  *domain.SyncSchedule
	last      *domain.SyncReport
	statusErr error
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{started: make(chan struct{}, 4)}
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stop := m.stopCh
	m.mu.Unlock()

	m.started <- struct{}{}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stop:
		return nil
	}
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	close(m.stopCh)
	return nil
}

func (m *mockScheduler) Status(_ context.Context) (*domain.SyncSchedule, *domain.SyncReport, error) {
	return m.schedule, m.last, m.statusErr
}

// mockWatcher reports one change for every value sent on trigger.
type mockWatcher struct {
	trigger chan struct{}
}

func (m *mockWatcher) Run(ctx context.Context, onChange func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.trigger:
			onChange()
		}
	}
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	publisher *mockPublisher
	sync      *mockSyncOrchestrator
	settings  *mockSettingsService
	scheduler *mockScheduler
}

// setupTestServices installs fresh mocks and resets command flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		publisher: &mockPublisher{},
		sync:      &mockSyncOrchestrator{},
		settings:  newMockSettingsService(),
		scheduler: newMockScheduler(),
	}
	SetServices(&Services{
		SettingsService:  ts.settings,
		Publisher:        ts.publisher,
		SyncOrchestrator: ts.sync,
		Scheduler:        ts.scheduler,
	})
	resetFlags()
	return ts, func() {
		SetServices(&Services{})
		SetBootstrap(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetContext(context.Background())
		scheduleCmd.SetContext(context.Background())
	}
}

func resetFlags() {
	renderPrinted, renderStrict, renderJSON = false, false, false
	syncDryRun, syncJSON = false, false
	historyLimit, historyJSON = 10, false
	verbose, configDir = false, ""
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
