package builtins

import (
	"math"
	"testing"
	"time"

	"quantsim/internal/domain"
	"quantsim/internal/indicator"
	"quantsim/internal/strategy"
)

// emptyFrame allocates a frame of n bars with every series NaN so tests can
// set only the values a strategy reads.
func emptyFrame(n int) *indicator.Frame {
	nans := func() []float64 {
		s := make([]float64, n)
		for i := range s {
			s[i] = math.NaN()
		}
		return s
	}
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	f := &indicator.Frame{
		Bars:       make([]domain.Bar, n),
		EMAFast:    nans(),
		EMASlow:    nans(),
		RSI:        nans(),
		MACD:       nans(),
		MACDSignal: nans(),
		MACDHist:   nans(),
		ATR:        nans(),
		BBMid:      nans(),
		BBUpper:    nans(),
		BBLower:    nans(),
		StochK:     nans(),
		StochD:     nans(),
		WilliamsR:  nans(),
		ADX:        nans(),
		PlusDI:     nans(),
		MinusDI:    nans(),
		CCI:        nans(),
		Momentum:   nans(),
		ROC:        nans(),
	}
	for i := range f.Bars {
		f.Bars[i] = domain.Bar{Timestamp: start.AddDate(0, 0, i), Close: 100}
	}
	return f
}

func TestEMACross(t *testing.T) {
	s := NewEMACross()

	cases := []struct {
		name                   string
		fastPrev, slowPrev     float64
		fast, slow             float64
		want                   domain.Direction
	}{
		{"upward cross", 99, 100, 101, 100, domain.Long},
		{"downward cross", 101, 100, 99, 100, domain.Short},
		{"touch then cross up", 100, 100, 101, 100, domain.Long},
		{"no cross above", 101, 100, 102, 100, domain.Neutral},
		{"no cross below", 99, 100, 98, 100, domain.Neutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := emptyFrame(2)
			f.EMAFast[0], f.EMASlow[0] = tc.fastPrev, tc.slowPrev
			f.EMAFast[1], f.EMASlow[1] = tc.fast, tc.slow
			if got := s.Vote(f, 1); got != tc.want {
				t.Errorf("Vote() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEMACrossNeutralDuringWarmup(t *testing.T) {
	s := NewEMACross()
	f := emptyFrame(2)
	// Previous bar still NaN: no vote even though current values cross.
	f.EMAFast[1], f.EMASlow[1] = 101, 100
	if got := s.Vote(f, 1); got != domain.Neutral {
		t.Errorf("Vote() with NaN history = %v, want neutral", got)
	}
	if got := s.Vote(f, 0); got != domain.Neutral {
		t.Errorf("Vote(0) = %v, want neutral", got)
	}
}

func TestRSIReversal(t *testing.T) {
	s := NewRSIReversal(30, 70)

	cases := []struct {
		name           string
		rsiPrev, rsi   float64
		kPrev, k       float64
		want           domain.Direction
	}{
		{"oversold exit confirmed", 28, 35, 20, 25, domain.Long},
		{"oversold exit unconfirmed", 28, 35, 25, 20, domain.Neutral},
		{"overbought exit confirmed", 75, 65, 80, 70, domain.Short},
		{"overbought exit unconfirmed", 75, 65, 70, 80, domain.Neutral},
		{"mid zone", 50, 55, 40, 50, domain.Neutral},
		{"still oversold", 25, 28, 20, 25, domain.Neutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := emptyFrame(2)
			f.RSI[0], f.RSI[1] = tc.rsiPrev, tc.rsi
			f.StochK[0], f.StochK[1] = tc.kPrev, tc.k
			if got := s.Vote(f, 1); got != tc.want {
				t.Errorf("Vote() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMACDCross(t *testing.T) {
	s := NewMACDCross(20)

	cases := []struct {
		name               string
		linePrev, sigPrev  float64
		line, sig          float64
		adx                float64
		want               domain.Direction
	}{
		{"upward cross strong trend", -0.5, 0, 0.5, 0, 25, domain.Long},
		{"downward cross strong trend", 0.5, 0, -0.5, 0, 25, domain.Short},
		{"upward cross weak trend", -0.5, 0, 0.5, 0, 15, domain.Neutral},
		{"gate boundary", -0.5, 0, 0.5, 0, 20, domain.Neutral},
		{"no cross", 0.5, 0, 0.7, 0, 25, domain.Neutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := emptyFrame(2)
			f.MACD[0], f.MACDSignal[0] = tc.linePrev, tc.sigPrev
			f.MACD[1], f.MACDSignal[1] = tc.line, tc.sig
			f.ADX[1] = tc.adx
			if got := s.Vote(f, 1); got != tc.want {
				t.Errorf("Vote() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBollingerBreakout(t *testing.T) {
	s := NewBollingerBreakout()

	cases := []struct {
		name                 string
		closePrev, closeCur  float64
		roc                  float64
		want                 domain.Direction
	}{
		{"upper breakout with momentum", 104, 106, 1.2, domain.Long},
		{"upper breakout without momentum", 104, 106, -0.5, domain.Neutral},
		{"lower breakout with momentum", 96, 94, -1.2, domain.Short},
		{"lower breakout without momentum", 96, 94, 0.5, domain.Neutral},
		{"inside bands", 100, 101, 1.2, domain.Neutral},
		{"already above", 106, 107, 1.2, domain.Neutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := emptyFrame(2)
			// Bands fixed at 95/105 on both bars.
			f.BBUpper[0], f.BBUpper[1] = 105, 105
			f.BBLower[0], f.BBLower[1] = 95, 95
			f.Bars[0].Close = tc.closePrev
			f.Bars[1].Close = tc.closeCur
			f.ROC[1] = tc.roc
			if got := s.Vote(f, 1); got != tc.want {
				t.Errorf("Vote() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRegisterAll(t *testing.T) {
	reg := strategy.NewRegistry()
	RegisterAll(reg)

	want := []string{
		strategy.NameBollingerBreakout,
		strategy.NameEMACrossover,
		strategy.NameMACDCrossover,
		strategy.NameRSIReversal,
	}
	got := reg.List()
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
