package optimizer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/thewhitelisted/optiq/internal/model"
)

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// returnStats holds annualized return statistics for a set of securities,
// ordered like the tickers slice they were computed from.
type returnStats struct {
	tickers  []string
	expected []float64    // annualized mean daily returns
	cov      *mat.SymDense // annualized covariance of daily returns
	corr     *mat.SymDense
}

// computeReturnStats derives annualized expected returns and covariance from
// per-ticker daily close series. Series are truncated to the shortest length
// so the observation matrix stays rectangular; at least two aligned
// observations are required.
func computeReturnStats(tickers []string, closes map[string][]float64) (*returnStats, error) {
	n := len(tickers)
	minLen := -1
	for _, ticker := range tickers {
		series, ok := closes[ticker]
		if !ok {
			return nil, fmt.Errorf("no price history for %s", ticker)
		}
		if minLen < 0 || len(series) < minLen {
			minLen = len(series)
		}
	}
	if minLen < 3 {
		return nil, fmt.Errorf("insufficient price history: %d aligned observations", minLen)
	}

	// Daily simple returns, one row per observation, one column per ticker.
	obs := minLen - 1
	returns := mat.NewDense(obs, n, nil)
	expected := make([]float64, n)
	for j, ticker := range tickers {
		series := closes[ticker]
		series = series[len(series)-minLen:]
		var sum float64
		for i := 1; i < minLen; i++ {
			if series[i-1] == 0 {
				return nil, fmt.Errorf("zero price in history for %s", ticker)
			}
			r := series[i]/series[i-1] - 1
			returns.Set(i-1, j, r)
			sum += r
		}
		expected[j] = sum / float64(obs) * tradingDaysPerYear
	}

	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, returns, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, cov.At(i, j)*tradingDaysPerYear)
		}
	}

	corr := mat.NewSymDense(n, nil)
	stat.CorrelationMatrix(corr, returns, nil)

	return &returnStats{tickers: tickers, expected: expected, cov: cov, corr: corr}, nil
}

// riskMetrics renders the covariance and correlation matrices as ticker-keyed
// maps for the API response.
func (s *returnStats) riskMetrics() *model.RiskMetrics {
	covariance := make(map[string]map[string]float64, len(s.tickers))
	correlation := make(map[string]map[string]float64, len(s.tickers))
	for i, rowTicker := range s.tickers {
		covRow := make(map[string]float64, len(s.tickers))
		corrRow := make(map[string]float64, len(s.tickers))
		for j, colTicker := range s.tickers {
			covRow[colTicker] = s.cov.At(i, j)
			corrRow[colTicker] = s.corr.At(i, j)
		}
		covariance[rowTicker] = covRow
		correlation[rowTicker] = corrRow
	}
	return &model.RiskMetrics{CovarianceMatrix: covariance, CorrelationMatrix: correlation}
}
