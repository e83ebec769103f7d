package ta

import "math"

func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func SMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 || period > len(values) {
		period = len(values)
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if period <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI returns the latest Wilder-smoothed RSI value, or 50 when the series
// is too short to compute one.
func RSI(closes []float64, period int) float64 {
	if len(closes) <= period {
		return 50
	}
	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain := math.Max(delta, 0)
		loss := math.Max(-delta, 0)
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}
	if avgLoss == 0 {
		if avgGain > 0 {
			return 100
		}
		return 50
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACD returns the latest MACD line, signal line, and histogram for the
// standard 12/26/9 configuration. Series shorter than 35 observations
// produce zeros.
func MACD(closes []float64) (line, signal, hist float64) {
	if len(closes) < 35 {
		return 0, 0, 0
	}
	fast := EMASeries(closes, 12)
	slow := EMASeries(closes, 26)
	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = fast[i] - slow[i]
	}
	signalLine := EMASeries(macdLine, 9)
	last := len(closes) - 1
	return macdLine[last], signalLine[last], macdLine[last] - signalLine[last]
}

// ATR returns the latest simple-averaged true range over period bars.
func ATR(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if n <= period || len(highs) != n || len(lows) != n {
		return 0
	}
	trs := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		tr := highs[i] - lows[i]
		tr = math.Max(tr, math.Abs(highs[i]-closes[i-1]))
		tr = math.Max(tr, math.Abs(lows[i]-closes[i-1]))
		trs = append(trs, tr)
	}
	if len(trs) < period {
		return 0
	}
	var sum float64
	for _, v := range trs[len(trs)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// Returns computes simple percentage returns between consecutive closes.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// ReturnVolatility is the standard deviation of the trailing `window`
// returns, expressed in percent.
func ReturnVolatility(closes []float64, window int) float64 {
	rets := Returns(closes)
	if len(rets) < window {
		return 0
	}
	_, std := MeanStd(rets[len(rets)-window:])
	return std * 100
}

// ZScore positions the last value of a series against the series mean and
// standard deviation. Returns 0 when the deviation is degenerate.
func ZScore(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := MeanStd(values)
	if std == 0 {
		return 0
	}
	return (values[len(values)-1] - mean) / std
}
