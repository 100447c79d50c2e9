package sequence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/sequence/memory"
)

// fixedProbe reports fixed host ceilings so tests do not depend on the
// machine running them.
type fixedProbe struct {
	available, addressSpace uint64
}

func (p fixedProbe) AvailableMemory() uint64   { return p.available }
func (p fixedProbe) AddressSpaceLimit() uint64 { return p.addressSpace }

func testEngine() *Engine {
	return NewEngine(Options{HostProbe: fixedProbe{}, GCMode: string(memory.GCModeDisabled)})
}

func mustCompute(t *testing.T, n int64, x, y *big.Int) Result {
	t.Helper()
	req, err := Validate(n, x, y)
	require.NoError(t, err)
	res, err := testEngine().Compute(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestComputeKnownSequences(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		n    int64
		x, y *big.Int
		want []string
	}{
		{name: "n=0 returns the first seed", n: 0, x: big.NewInt(7), y: big.NewInt(9), want: []string{"7"}},
		{name: "n=1 returns both seeds", n: 1, want: []string{"0", "1"}},
		{name: "standard seed", n: 10, want: []string{"0", "1", "1", "2", "3", "5", "8", "13", "21", "34", "55"}},
		{name: "custom seed", n: 10, x: big.NewInt(5), y: big.NewInt(5), want: []string{"5", "5", "10", "15", "25", "40", "65", "105", "170", "275", "445"}},
		{name: "negative seeds", n: 5, x: big.NewInt(-3), y: big.NewInt(2), want: []string{"-3", "2", "-1", "1", "0", "1"}},
		{name: "Lucas numbers", n: 6, x: big.NewInt(2), y: big.NewInt(1), want: []string{"2", "1", "3", "4", "7", "11", "18"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := mustCompute(t, tt.n, tt.x, tt.y)
			got, err := res.Strings(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int(tt.n)+1, res.Len())
		})
	}
}

func TestComputeThirtiethTerm(t *testing.T) {
	t.Parallel()
	res := mustCompute(t, 30, nil, nil)
	assert.Equal(t, "832040", res.Last().String())
	assert.Equal(t, "832040", res.Term(30).String())
}

func TestComputeLargeIndexDigitGrowth(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("skipping large sequence in short mode")
	}
	res := mustCompute(t, 20_000, nil, nil)
	require.Equal(t, 20_001, res.Len())
	// F(20000) has floor(20000*log10(phi) - log10(sqrt(5))) + 1 digits.
	assert.Equal(t, 4180, res.DigitCount(20_000))
	assert.Equal(t, 2090, res.DigitCount(10_000))
}

func TestComputeRecurrence_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every term is the sum of the two before it", prop.ForAll(
		func(n int, x, y int64) bool {
			req, err := Validate(int64(n), big.NewInt(x), big.NewInt(y))
			if err != nil {
				return false
			}
			res, err := testEngine().Compute(context.Background(), req)
			if err != nil {
				return false
			}
			if res.Len() != n+1 || res.Term(0).Int64() != x {
				return false
			}
			if n >= 1 && res.Term(1).Int64() != y {
				return false
			}
			sum := new(big.Int)
			for i := 2; i <= n; i++ {
				sum.Add(res.terms[i-1], res.terms[i-2])
				if sum.Cmp(res.terms[i]) != 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 600),
		gen.Int64(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestComputeIsIdempotent(t *testing.T) {
	t.Parallel()
	x, _ := new(big.Int).SetString("-31415926535897932384626433832795028841971", 10)
	render := func() []byte {
		var buf bytes.Buffer
		res := mustCompute(t, 3000, x, big.NewInt(42))
		require.NoError(t, res.WriteJSON(context.Background(), &buf))
		return buf.Bytes()
	}
	assert.Equal(t, render(), render())
}

func TestComputeResourceExhausted(t *testing.T) {
	t.Parallel()
	req, err := Validate(5000, nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		opts Options
	}{
		{name: "configured limit", opts: Options{MemoryLimit: 64 << 10, HostProbe: fixedProbe{}}},
		{name: "host available memory", opts: Options{HostProbe: fixedProbe{available: 64 << 10}}},
		{name: "address space limit", opts: Options{HostProbe: fixedProbe{addressSpace: 64 << 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewEngine(tt.opts).Compute(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindResourceExhausted))

			var memErr apperrors.MemoryError
			require.ErrorAs(t, err, &memErr)
			assert.Equal(t, uint64(64<<10), memErr.Limit)
			assert.Equal(t, EstimateRequest(req).TotalBytes, memErr.Requested)
			assert.Contains(t, err.Error(), "Not enough memory")
		})
	}
}

func TestEngineTermAdmission(t *testing.T) {
	t.Parallel()
	req, err := TermLimits().Validate(10_000_000, nil, nil)
	require.NoError(t, err)
	need := EstimateTerm(10_000_000, nil, nil)
	// a(n) alone is about 6.9M bits.
	assert.Greater(t, need, uint64(5*870_000))

	_, err = NewEngine(Options{MemoryLimit: need - 1, HostProbe: fixedProbe{}}).Term(context.Background(), req, TermOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindResourceExhausted))
	var memErr apperrors.MemoryError
	require.ErrorAs(t, err, &memErr)
	assert.Equal(t, need, memErr.Requested)

	small, err := TermLimits().Validate(90, big.NewInt(2), big.NewInt(1))
	require.NoError(t, err)
	got, err := NewEngine(Options{MemoryLimit: 1 << 20, HostProbe: fixedProbe{}}).Term(context.Background(), small, TermOptions{})
	require.NoError(t, err)
	want, err := Term(context.Background(), 90, big.NewInt(2), big.NewInt(1), TermOptions{})
	require.NoError(t, err)
	assert.Zero(t, want.Cmp(got))
}

func TestComputeCancellation(t *testing.T) {
	t.Parallel()
	req, err := Validate(10_000, nil, nil)
	require.NoError(t, err)

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := testEngine().Compute(ctx, req)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, res.Len())
	})

	t.Run("deadline", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		_, err := testEngine().Compute(ctx, req)
		var timeoutErr apperrors.TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
	})

	t.Run("canceled mid computation", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		engine := NewEngine(Options{
			HostProbe: fixedProbe{},
			Progress: func(p float64) {
				if p > 0.1 {
					cancel()
				}
			},
		})
		res, err := engine.Compute(ctx, req)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, res.Len())
	})
}

func TestComputeProgress(t *testing.T) {
	t.Parallel()
	req, err := Validate(2000, nil, nil)
	require.NoError(t, err)

	var reports []float64
	engine := NewEngine(Options{
		HostProbe: fixedProbe{},
		Progress:  func(p float64) { reports = append(reports, p) },
	})
	_, err = engine.Compute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, reports, 2000/CancelCheckInterval+1)
	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i], reports[i-1])
	}
	assert.Equal(t, 1.0, reports[len(reports)-1])
}

func TestEstimateCoversEveryTerm(t *testing.T) {
	t.Parallel()
	seeds := []struct {
		name string
		x, y *big.Int
	}{
		{"standard", big.NewInt(0), big.NewInt(1)},
		{"large positive", new(big.Int).Lsh(big.NewInt(1), 1000), new(big.Int).Lsh(big.NewInt(3), 999)},
		{"mixed signs", big.NewInt(-1 << 62), new(big.Int).Lsh(big.NewInt(1), 200)},
	}
	for _, s := range seeds {
		t.Run(s.name, func(t *testing.T) {
			t.Parallel()
			req, err := Validate(4000, s.x, s.y)
			require.NoError(t, err)
			est := EstimateRequest(req)
			arena, err := memory.NewTermArena(int(est.Words))
			require.NoError(t, err)

			terms, err := accumulate(context.Background(), req, arena, nil)
			require.NoError(t, err)
			assert.Equal(t, int(est.Words), arena.UsedWords(), "every term must come from the arena")

			sb := seedBits(req.startX, req.startY)
			for i, term := range terms {
				if got, limit := cap(term.Bits()), termWords(sb, i); got > limit {
					t.Fatalf("term %d outgrew its reservation: cap %d > %d words", i, got, limit)
				}
			}
			last := uint64(len(terms[len(terms)-1].String()))
			assert.GreaterOrEqual(t, est.LastTermDigits+1, last)
		})
	}
}

func TestEstimateGrowsQuadratically(t *testing.T) {
	t.Parallel()
	small, err := Validate(10_000, nil, nil)
	require.NoError(t, err)
	large, err := Validate(100_000, nil, nil)
	require.NoError(t, err)

	ratio := float64(EstimateRequest(large).TotalBytes) / float64(EstimateRequest(small).TotalBytes)
	assert.InDelta(t, 100, ratio, 10)

	full, err := Validate(1_000_000, nil, nil)
	require.NoError(t, err)
	// about 0.0434*n² bytes of words plus 0.1045*n² bytes of text
	assert.Greater(t, EstimateRequest(full).TotalBytes, uint64(100<<30))
}

func TestResultJSON(t *testing.T) {
	t.Parallel()
	res := mustCompute(t, 6, big.NewInt(-2), big.NewInt(3))

	var buf bytes.Buffer
	require.NoError(t, res.WriteJSON(context.Background(), &buf))
	assert.Equal(t, `["-2","3","1","4","5","9","14"]`, buf.String())

	body, err := json.Marshal(struct {
		Result Result `json:"result"`
	}{res})
	require.NoError(t, err)
	assert.Equal(t, `{"result":["-2","3","1","4","5","9","14"]}`, string(body))

	var empty bytes.Buffer
	require.NoError(t, Result{}.WriteJSON(context.Background(), &empty))
	assert.Equal(t, "[]", empty.String())
}

func TestResultWriteJSONAcrossWindows(t *testing.T) {
	t.Parallel()
	res := mustCompute(t, SerializeWindow*3+17, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, res.WriteJSON(context.Background(), &buf))

	var decoded []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	want, err := res.Strings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, decoded)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestResultWriteJSONErrors(t *testing.T) {
	t.Parallel()
	res := mustCompute(t, 100, nil, nil)

	err := res.WriteJSON(context.Background(), failingWriter{})
	var calcErr apperrors.CalculationError
	require.ErrorAs(t, err, &calcErr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err = res.WriteJSON(ctx, &buf)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = res.Strings(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultTermIsACopy(t *testing.T) {
	t.Parallel()
	res := mustCompute(t, 5, nil, nil)
	res.Term(5).SetInt64(-1)
	res.Last().SetInt64(-1)
	assert.Equal(t, "5", res.Term(5).String())
	assert.Equal(t, 1, res.DigitCount(5))

	neg := mustCompute(t, 1, big.NewInt(-12345), nil)
	assert.Equal(t, 5, neg.DigitCount(0))
	assert.Nil(t, Result{}.Last())
}
