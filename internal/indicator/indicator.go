// Package indicator implements the technical indicator library consumed by
// the signal voting and risk sizing engines. Every function maps an ordered
// bar sequence to a series aligned 1:1 with the input; positions inside an
// indicator's warm-up window are NaN and must never be read as zero.
package indicator

import (
	"math"

	"quantsim/internal/domain"
)

// guard avoids division by zero in oscillator denominators.
const guard = 1e-10

// Valid reports whether a series value is outside its warm-up window.
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

func closes(bars []domain.Bar) []float64 {
	c := make([]float64, len(bars))
	for i, b := range bars {
		c[i] = b.Close
	}
	return c
}

// firstValid returns the index of the first non-NaN value, or -1.
func firstValid(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// EMA computes an exponential moving average with smoothing 2/(period+1),
// seeded with the simple average of the first period values. Leading NaNs in
// the input are skipped, so EMAs can be chained (MACD signal line).
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	start := firstValid(values)
	if start < 0 || start+period > len(values) {
		return out
	}
	sum := 0.0
	for i := start; i < start+period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[start+period-1] = prev
	alpha := 2.0 / (float64(period) + 1.0)
	for i := start + period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// wilderEMA smooths with alpha = 1/period, the recurrence RSI and ADX use.
func wilderEMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	start := firstValid(values)
	if start < 0 || start+period > len(values) {
		return out
	}
	sum := 0.0
	for i := start; i < start+period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[start+period-1] = prev
	alpha := 1.0 / float64(period)
	for i := start + period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// SMA computes a simple moving average over a fixed window.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RSI computes the relative strength index using Wilder smoothing of gains
// and losses. A window with zero average loss yields the neutral value 50.
func RSI(close []float64, period int) []float64 {
	n := len(close)
	out := nanSlice(n)
	if period <= 0 || n < period+1 {
		return out
	}
	gains := nanSlice(n)
	losses := nanSlice(n)
	for i := 1; i < n; i++ {
		d := close[i] - close[i-1]
		gains[i] = math.Max(d, 0)
		losses[i] = math.Max(-d, 0)
	}
	avgGain := wilderEMA(gains[1:], period)
	avgLoss := wilderEMA(losses[1:], period)
	for i := period; i < n; i++ {
		g, l := avgGain[i-1], avgLoss[i-1]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		if l == 0 {
			out[i] = 50.0
			continue
		}
		rs := g / l
		out[i] = 100.0 - 100.0/(1.0+rs)
	}
	return out
}

// MACD returns the MACD line (fast EMA − slow EMA), its signal line, and the
// histogram (line − signal).
func MACD(close []float64, fast, slow, signal int) (line, sig, hist []float64) {
	ef := EMA(close, fast)
	es := EMA(close, slow)
	n := len(close)
	line = nanSlice(n)
	for i := 0; i < n; i++ {
		if Valid(ef[i]) && Valid(es[i]) {
			line[i] = ef[i] - es[i]
		}
	}
	sig = EMA(line, signal)
	hist = nanSlice(n)
	for i := 0; i < n; i++ {
		if Valid(line[i]) && Valid(sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}
	return line, sig, hist
}

// TrueRange returns the per-bar true range. The first bar has no previous
// close, so its range is simply high − low.
func TrueRange(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}
		pc := bars[i-1].Close
		out[i] = math.Max(b.High-b.Low, math.Max(math.Abs(b.High-pc), math.Abs(b.Low-pc)))
	}
	return out
}

// ATR computes the average true range as an EMA of the true range series.
func ATR(bars []domain.Bar, period int) []float64 {
	return EMA(TrueRange(bars), period)
}

// Bollinger returns the middle, upper, and lower bands: an SMA of the close
// plus/minus k population standard deviations.
func Bollinger(close []float64, period int, k float64) (mid, upper, lower []float64) {
	n := len(close)
	mid = SMA(close, period)
	upper = nanSlice(n)
	lower = nanSlice(n)
	if period <= 0 || n < period {
		return mid, upper, lower
	}
	for i := period - 1; i < n; i++ {
		m := mid[i]
		varSum := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := close[j] - m
			varSum += d * d
		}
		sd := math.Sqrt(varSum / float64(period))
		upper[i] = m + k*sd
		lower[i] = m - k*sd
	}
	return mid, upper, lower
}

// Stochastic returns the %K and %D lines of the stochastic oscillator.
// %K = (close − lowest low) / (highest high − lowest low) × 100 over kPeriod;
// %D is an SMA of %K over dPeriod.
func Stochastic(bars []domain.Bar, kPeriod, dPeriod int) (k, d []float64) {
	n := len(bars)
	k = nanSlice(n)
	if kPeriod <= 0 || n < kPeriod {
		return k, nanSlice(n)
	}
	for i := kPeriod - 1; i < n; i++ {
		lo := math.MaxFloat64
		hi := -math.MaxFloat64
		for j := i - kPeriod + 1; j <= i; j++ {
			lo = math.Min(lo, bars[j].Low)
			hi = math.Max(hi, bars[j].High)
		}
		k[i] = (bars[i].Close - lo) / (hi - lo + guard) * 100.0
	}
	d = SMA(k[kPeriod-1:], dPeriod)
	full := nanSlice(n)
	copy(full[kPeriod-1:], d)
	return k, full
}

// WilliamsR computes the Williams %R oscillator, bounded [−100, 0].
func WilliamsR(bars []domain.Bar, period int) []float64 {
	n := len(bars)
	out := nanSlice(n)
	if period <= 0 || n < period {
		return out
	}
	for i := period - 1; i < n; i++ {
		lo := math.MaxFloat64
		hi := -math.MaxFloat64
		for j := i - period + 1; j <= i; j++ {
			lo = math.Min(lo, bars[j].Low)
			hi = math.Max(hi, bars[j].High)
		}
		out[i] = (hi - bars[i].Close) / (hi - lo + guard) * -100.0
	}
	return out
}

// ADX computes the average directional index along with the +DI and −DI
// lines. The ADX itself needs two smoothing passes, so its warm-up window is
// roughly twice the period.
func ADX(bars []domain.Bar, period int) (adx, plusDI, minusDI []float64) {
	n := len(bars)
	adx = nanSlice(n)
	plusDI = nanSlice(n)
	minusDI = nanSlice(n)
	if period <= 0 || n < 2*period {
		return adx, plusDI, minusDI
	}

	plusDM := nanSlice(n)
	minusDM := nanSlice(n)
	for i := 1; i < n; i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		plusDM[i] = 0
		minusDM[i] = 0
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	atr := EMA(TrueRange(bars), period)
	smPlus := EMA(plusDM, period)
	smMinus := EMA(minusDM, period)

	dx := nanSlice(n)
	for i := 0; i < n; i++ {
		if !Valid(atr[i]) || !Valid(smPlus[i]) || !Valid(smMinus[i]) {
			continue
		}
		plusDI[i] = 100.0 * smPlus[i] / (atr[i] + guard)
		minusDI[i] = 100.0 * smMinus[i] / (atr[i] + guard)
		dx[i] = 100.0 * math.Abs(plusDI[i]-minusDI[i]) / (plusDI[i] + minusDI[i] + guard)
	}
	adx = EMA(dx, period)
	return adx, plusDI, minusDI
}

// CCI computes the commodity channel index from the typical price, its SMA,
// and the mean absolute deviation over the window.
func CCI(bars []domain.Bar, period int) []float64 {
	n := len(bars)
	out := nanSlice(n)
	if period <= 0 || n < period {
		return out
	}
	tp := make([]float64, n)
	for i, b := range bars {
		tp[i] = (b.High + b.Low + b.Close) / 3.0
	}
	sma := SMA(tp, period)
	for i := period - 1; i < n; i++ {
		mad := 0.0
		for j := i - period + 1; j <= i; j++ {
			mad += math.Abs(tp[j] - sma[i])
		}
		mad /= float64(period)
		out[i] = (tp[i] - sma[i]) / (0.015*mad + guard)
	}
	return out
}

// Momentum returns close − close[period] bars earlier.
func Momentum(close []float64, period int) []float64 {
	out := nanSlice(len(close))
	for i := period; i < len(close); i++ {
		out[i] = close[i] - close[i-period]
	}
	return out
}

// ROC returns the percentage rate of change over the given period.
func ROC(close []float64, period int) []float64 {
	out := nanSlice(len(close))
	for i := period; i < len(close); i++ {
		out[i] = (close[i] - close[i-period]) / (close[i-period] + guard) * 100.0
	}
	return out
}
