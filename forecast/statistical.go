package forecast

import (
	"github.com/sartorproj/goforecast/arima"
	"github.com/sartorproj/goforecast/autoarima"
	"github.com/sartorproj/goforecast/errs"
)

// Statistical forecasts with the ARIMA order chosen by autoarima.Search.
type Statistical struct {
	cfg    StatisticalConfig
	search *autoarima.Result
}

// NewStatistical creates an untrained statistical forecaster.
func NewStatistical(cfg StatisticalConfig) (*Statistical, error) {
	if !(cfg.Confidence > 0 && cfg.Confidence < 1) {
		return nil, errs.New(errs.ErrConfig, "forecast.NewStatistical", "confidence must be in (0, 1), got %v", cfg.Confidence)
	}
	return &Statistical{cfg: cfg}, nil
}

// Kind returns KindStatistical.
func (s *Statistical) Kind() Kind {
	return KindStatistical
}

// Fit searches the order on h.Series and keeps the winning model.
func (s *Statistical) Fit(h History) error {
	if h.Series == nil {
		return errs.New(errs.ErrConfig, "forecast.Statistical.Fit", "statistical forecaster needs a series")
	}

	result, err := autoarima.Search(h.Series, s.cfg.Config)
	if err != nil {
		return err
	}
	s.search = result
	return nil
}

// PredictInSample returns one fitted value per training observation.
func (s *Statistical) PredictInSample() ([]float64, error) {
	if s.search == nil {
		return nil, errs.New(errs.ErrNotTrained, "forecast.Statistical.PredictInSample", "forecaster has not been fitted")
	}
	return s.search.FittedValues(), nil
}

// Forecast returns point forecasts with a band at the configured confidence.
func (s *Statistical) Forecast(periods int) (*Result, error) {
	const op = "forecast.Statistical.Forecast"

	if s.search == nil {
		return nil, errs.New(errs.ErrNotTrained, op, "forecaster has not been fitted")
	}
	if err := checkPeriods(op, periods); err != nil {
		return nil, err
	}

	pred, err := s.search.PredictInterval(periods, s.cfg.Confidence)
	if err != nil {
		return nil, err
	}
	return &Result{Values: pred.Mean, Lower: pred.Lower, Upper: pred.Upper}, nil
}

// Order returns the selected order; zero before Fit.
func (s *Statistical) Order() arima.Order {
	if s.search == nil {
		return arima.Order{}
	}
	return s.search.Order
}

// Search returns the order search result, nil before Fit.
func (s *Statistical) Search() *autoarima.Result {
	return s.search
}
