// Package evaluation scores forecasts against observed values.
//
// Evaluate returns a Report with a fixed set of fifteen metrics: scale
// errors (MAE, MSE, RMSE), percentage errors (MAPE, SMAPE, WAPE), fit (R2,
// Bias, MASE), residual shape (Residual Std, Skewness, Kurtosis) and
// direction and volatility agreement. Zero denominators are floored at
// Epsilon. Metrics that need two points are NaN for a single point and
// serialise as JSON null.
//
//	report, err := evaluation.Evaluate(test.Values, forecast.Values)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.Get(evaluation.RMSE))
//
// Compare picks the better of two reports by RMSE.
package evaluation
