package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/sequence"
)

// MockResultPresenter records the table it was asked to present.
type MockResultPresenter struct {
	presented []TaskResult
}

func (m *MockResultPresenter) PresentVerificationTable(results []TaskResult, _ io.Writer) {
	m.presented = results
}

func (*MockResultPresenter) HandleError(err error, _ time.Duration, _ io.Writer) int {
	return apperrors.ExitCode(err)
}

func TestExecuteTasks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		tasks       []Task
		expectError []bool
	}{
		{
			name:        "Single success",
			tasks:       []Task{taskOf("a", instant)},
			expectError: []bool{false},
		},
		{
			name:        "Single failure",
			tasks:       []Task{taskOf("a", failing)},
			expectError: []bool{true},
		},
		{
			name:        "Failure does not cancel siblings",
			tasks:       []Task{taskOf("a", failing), taskOf("b", stepping(0))},
			expectError: []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			results := ExecuteTasks(context.Background(), tt.tasks, NullProgressReporter{}, io.Discard)
			if len(results) != len(tt.tasks) {
				t.Fatalf("expected %d results, got %d", len(tt.tasks), len(results))
			}
			for i, want := range tt.expectError {
				if (results[i].Err != nil) != want {
					t.Errorf("result %d: err = %v, expectError %v", i, results[i].Err, want)
				}
				if results[i].Name != tt.tasks[i].Name {
					t.Errorf("result %d: name %q, want %q", i, results[i].Name, tt.tasks[i].Name)
				}
			}
		})
	}
}

func TestAnalyzeVerification(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		results        []TaskResult
		expectedStatus int
		expectedOutput string
	}{
		{
			name: "All agree",
			results: []TaskResult{
				{Name: "A", Value: big.NewInt(5), Duration: 2 * time.Millisecond},
				{Name: "B", Value: big.NewInt(5), Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitSuccess,
			expectedOutput: "Success",
		},
		{
			name: "Mismatch",
			results: []TaskResult{
				{Name: "A", Value: big.NewInt(5), Duration: time.Millisecond},
				{Name: "B", Value: big.NewInt(6), Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitErrorMismatch,
			expectedOutput: "CRITICAL ERROR",
		},
		{
			name: "One failure",
			results: []TaskResult{
				{Name: "A", Value: big.NewInt(5), Duration: time.Millisecond},
				{Name: "B", Err: apperrors.TimeoutError{Operation: "term"}, Duration: time.Millisecond},
			},
			expectedStatus: apperrors.ExitErrorTimeout,
			expectedOutput: "B did not complete",
		},
		{
			name: "All failure",
			results: []TaskResult{
				{Name: "A", Err: errors.New("fail")},
				{Name: "B", Err: errors.New("fail")},
			},
			expectedStatus: apperrors.ExitErrorGeneric,
			expectedOutput: "Failure",
		},
		{
			name:           "Nothing ran",
			expectedStatus: apperrors.ExitErrorGeneric,
			expectedOutput: "Nothing was computed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			presenter := &MockResultPresenter{}
			status := AnalyzeVerification(tt.results, presenter, presenter, &buf)
			if status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, status)
			}
			if !strings.Contains(buf.String(), tt.expectedOutput) {
				t.Errorf("output %q should contain %q", buf.String(), tt.expectedOutput)
			}
			if len(presenter.presented) != len(tt.results) {
				t.Errorf("presented %d rows, want %d", len(presenter.presented), len(tt.results))
			}
		})
	}
}

func TestAnalyzeVerificationSortsFastestFirst(t *testing.T) {
	t.Parallel()
	presenter := &MockResultPresenter{}
	results := []TaskResult{
		{Name: "slow", Value: big.NewInt(1), Duration: time.Second},
		{Name: "failed", Err: errors.New("boom")},
		{Name: "fast", Value: big.NewInt(1), Duration: time.Millisecond},
	}
	AnalyzeVerification(results, presenter, presenter, io.Discard)

	var names []string
	for _, r := range presenter.presented {
		names = append(names, r.Name)
	}
	if strings.Join(names, ",") != "fast,slow,failed" {
		t.Errorf("order = %v, want fast,slow,failed", names)
	}
	if results[0].Name != "slow" {
		t.Error("AnalyzeVerification must not reorder the caller's slice")
	}
}

type fixedProbe struct{}

func (fixedProbe) AvailableMemory() uint64   { return 0 }
func (fixedProbe) AddressSpaceLimit() uint64 { return 0 }

func TestVerifyLastTerm(t *testing.T) {
	t.Parallel()
	req, err := sequence.ParseRequest("2000", "-17", "4")
	if err != nil {
		t.Fatal(err)
	}
	engine := sequence.NewEngine(sequence.Options{HostProbe: fixedProbe{}})

	v := VerifyLastTerm(context.Background(), engine, req, NullProgressReporter{}, io.Discard)
	if len(v.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(v.Results))
	}
	if v.Results[0].Name != EngineTaskName || v.Results[1].Name != DoublingTaskName {
		t.Errorf("unexpected task order: %s, %s", v.Results[0].Name, v.Results[1].Name)
	}
	if v.Sequence.Len() != 2001 {
		t.Errorf("sequence length = %d, want 2001", v.Sequence.Len())
	}
	presenter := &MockResultPresenter{}
	if code := AnalyzeVerification(v.Results, presenter, presenter, io.Discard); code != apperrors.ExitSuccess {
		t.Errorf("verification failed with code %d: %+v", code, v.Results)
	}
}

func TestVerifyLastTermResourceExhausted(t *testing.T) {
	t.Parallel()
	req, err := sequence.ParseRequest("5000", "", "")
	if err != nil {
		t.Fatal(err)
	}
	engine := sequence.NewEngine(sequence.Options{MemoryLimit: 1024, HostProbe: fixedProbe{}})

	v := VerifyLastTerm(context.Background(), engine, req, NullProgressReporter{}, io.Discard)
	if !apperrors.IsKind(v.Results[0].Err, apperrors.KindResourceExhausted) {
		t.Errorf("engine error = %v, want ResourceExhausted", v.Results[0].Err)
	}
	if v.Results[1].Err != nil {
		t.Errorf("fast doubling should still succeed: %v", v.Results[1].Err)
	}
	presenter := &MockResultPresenter{}
	if code := AnalyzeVerification(v.Results, presenter, presenter, io.Discard); code != apperrors.ExitErrorResource {
		t.Errorf("code = %d, want %d", code, apperrors.ExitErrorResource)
	}
}

func TestRunSequence(t *testing.T) {
	t.Parallel()
	req, err := sequence.ParseRequest("30", "", "")
	if err != nil {
		t.Fatal(err)
	}
	engine := sequence.NewEngine(sequence.Options{HostProbe: fixedProbe{}})
	seq, res := RunSequence(context.Background(), engine, req, NullProgressReporter{}, io.Discard)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Value.String() != "832040" || seq.Len() != 31 {
		t.Errorf("unexpected result: value %s, len %d", res.Value, seq.Len())
	}
}
