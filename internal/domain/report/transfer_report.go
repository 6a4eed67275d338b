package report

import "github.com/google/uuid"

// DashboardStats is a read model summarizing transfer activity network-wide
type DashboardStats struct {
	TotalRequests     int64 `json:"total_requests"`
	PendingRequests   int64 `json:"pending_requests"`
	CompletedRequests int64 `json:"completed_requests"`
	RejectedRequests  int64 `json:"rejected_requests"`
	ExpiredRequests   int64 `json:"expired_requests"`
	OpenShortages     int64 `json:"open_shortages"`
}

// ProductCount ranks a product by how often it was requested
type ProductCount struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Count       int64  `json:"count"`
}

// BranchActivity summarizes one branch's transfer traffic
type BranchActivity struct {
	BranchID  uuid.UUID `json:"branch_id"`
	Name      string    `json:"name"`
	Outgoing  int64     `json:"outgoing"`  // Requests this branch submitted
	Incoming  int64     `json:"incoming"`  // Requests targeting this branch as donor
	Completed int64     `json:"completed"` // Completed either way
	Expired   int64     `json:"expired"`
}
