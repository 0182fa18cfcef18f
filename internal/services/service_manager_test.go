package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/examination-service/internal/events"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/validator"
)

type stubRepositoryManager struct {
	repo      repositories.Repository
	shutdowns int
}

func (s *stubRepositoryManager) Initialize() error { return nil }

func (s *stubRepositoryManager) GetRepository() repositories.Repository { return s.repo }

func (s *stubRepositoryManager) HealthCheck(ctx context.Context) error { return nil }

func (s *stubRepositoryManager) Shutdown(ctx context.Context) error {
	s.shutdowns++
	return nil
}

func TestServiceManager_Lifecycle(t *testing.T) {
	repo := NewMockRepository()
	rm := &stubRepositoryManager{repo: repo}
	sm := NewServiceManager(repo, rm, testLogger(), validator.New(), events.NewMockEventPublisher(testLogger()), ServiceManagerConfig{
		ExportLocation: time.UTC,
		Random:         NewSeededRandomSource(1),
		DefaultTimeout: time.Second,
	})
	ctx := context.Background()

	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() before Initialize should fail")
	}

	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}

	if sm.Question() == nil || sm.Exam() == nil || sm.Submission() == nil ||
		sm.Grading() == nil || sm.Analytics() == nil || sm.Export() == nil {
		t.Fatal("a service getter returned nil")
	}
	if err := sm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := sm.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	_ = sm.Shutdown(ctx)
	if rm.shutdowns != 1 {
		t.Errorf("repository manager shut down %d times", rm.shutdowns)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() after Shutdown should fail")
	}
}

func TestServiceManager_GetterPanicsBeforeInitialize(t *testing.T) {
	sm := NewServiceManager(NewMockRepository(), nil, testLogger(), validator.New(), nil, ServiceManagerConfig{})
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	sm.Exam()
}
