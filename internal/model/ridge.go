package model

// ridgeVariant is linear regression with an L2 penalty on the coefficients.
// The shrinkage pulls weights toward zero in proportion to Regularization,
// which dampens the influence of outliers in the training batch.
type ridgeVariant struct{}

func (ridgeVariant) Kind() Kind { return KindRidge }

func (ridgeVariant) Fit(features [][]float64, targets []float64, params Parameters) (Fitted, error) {
	p := params.normalized()
	alpha := p.Regularization
	if alpha <= 0 {
		alpha = 0.1
	}
	return fitGradientDescent(features, targets, p, alpha)
}
