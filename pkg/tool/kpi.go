package tool

import "math"

// KPIReport converts raw business numbers into derived indicators
type KPIReport struct {
	Sales                 float64 `json:"sales"`
	Expense               float64 `json:"expense"`
	Profit                float64 `json:"profit"`
	ProfitMargin          float64 `json:"profit_margin"`
	ConversionRate        float64 `json:"conversion_rate"`
	AvgRevenuePerCustomer float64 `json:"avg_revenue_per_customer"`
}

// CalculateKPI derives profit, margin, conversion rate and average revenue.
// Zero denominators yield zero rather than NaN.
func CalculateKPI(sales, expense float64, leads, customers int) KPIReport {
	profit := sales - expense

	var conversion, margin, avgRevenue float64
	if leads > 0 {
		conversion = float64(customers) / float64(leads)
	}
	if sales > 0 {
		margin = profit / sales
	}
	if customers > 0 {
		avgRevenue = sales / float64(customers)
	}

	return KPIReport{
		Sales:                 sales,
		Expense:               expense,
		Profit:                profit,
		ProfitMargin:          round4(margin),
		ConversionRate:        round4(conversion),
		AvgRevenuePerCustomer: round4(avgRevenue),
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
