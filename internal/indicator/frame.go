package indicator

import (
	"errors"

	"quantsim/internal/domain"
)

// ErrNoBars is returned when a frame is requested for an empty bar sequence.
var ErrNoBars = errors.New("indicator: no bars to compute")

// Params collects the periods every frame computation needs.
type Params struct {
	EMAFast    int
	EMASlow    int
	RSIPeriod  int
	MACDSignal int
	ATRPeriod  int
	BBPeriod   int
	BBK        float64
	StochK     int
	StochD     int
	WilliamsP  int
	ADXPeriod  int
	CCIPeriod  int
	MomentumP  int
	ROCPeriod  int
}

// Frame holds every indicator series aligned 1:1 with the bar sequence it
// was computed from. Warm-up positions are NaN; check with Valid before use.
type Frame struct {
	Bars []domain.Bar

	EMAFast    []float64
	EMASlow    []float64
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64
	ATR        []float64
	BBMid      []float64
	BBUpper    []float64
	BBLower    []float64
	StochK     []float64
	StochD     []float64
	WilliamsR  []float64
	ADX        []float64
	PlusDI     []float64
	MinusDI    []float64
	CCI        []float64
	Momentum   []float64
	ROC        []float64
}

// Compute evaluates the full indicator set over the bar sequence. Every
// series in the returned frame has exactly len(bars) entries.
func Compute(bars []domain.Bar, p Params) (*Frame, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}

	c := closes(bars)
	f := &Frame{Bars: bars}

	f.EMAFast = EMA(c, p.EMAFast)
	f.EMASlow = EMA(c, p.EMASlow)
	f.RSI = RSI(c, p.RSIPeriod)
	f.MACD, f.MACDSignal, f.MACDHist = MACD(c, p.EMAFast, p.EMASlow, p.MACDSignal)
	f.ATR = ATR(bars, p.ATRPeriod)
	f.BBMid, f.BBUpper, f.BBLower = Bollinger(c, p.BBPeriod, p.BBK)
	f.StochK, f.StochD = Stochastic(bars, p.StochK, p.StochD)
	f.WilliamsR = WilliamsR(bars, p.WilliamsP)
	f.ADX, f.PlusDI, f.MinusDI = ADX(bars, p.ADXPeriod)
	f.CCI = CCI(bars, p.CCIPeriod)
	f.Momentum = Momentum(c, p.MomentumP)
	f.ROC = ROC(c, p.ROCPeriod)

	return f, nil
}

// Len returns the number of bars in the frame.
func (f *Frame) Len() int {
	return len(f.Bars)
}
