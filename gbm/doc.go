// Package gbm implements a gradient-boosted regression tree ensemble.
//
// Trees are grown greedily on the squared-error gradient and hessian with
// L2-regularised leaf weights, the way XGBoost scores splits. Each round
// draws a row subsample and a column subsample from a seeded generator, so a
// fixed Seed gives a reproducible model.
//
//	r, err := gbm.New(gbm.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	if err := r.Fit(x, y); err != nil {
//	    return err
//	}
//	yhat, _ := r.PredictBatch(xTest)
package gbm
