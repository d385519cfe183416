package model

import "github.com/shopspring/decimal"

// StatisticsResponse aggregates request counts and ledger totals for the dashboard
type StatisticsResponse struct {
	RequestsByStatus map[RequestStatus]int64 `json:"requestsByStatus"`
	RequestsByType   map[RequestType]int64   `json:"requestsByType"`
	TotalRequests    int64                   `json:"totalRequests"`
	TotalCredited    decimal.Decimal         `json:"totalCredited"`
	TotalDebited     decimal.Decimal         `json:"totalDebited"`
	TransactionCount int64                   `json:"transactionCount"`
	Balance          decimal.Decimal         `json:"balance"`
}

// CountRow is one GROUP BY bucket.
type CountRow struct {
	Bucket string
	Count  int64
}
