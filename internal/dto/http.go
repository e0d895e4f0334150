package dto

import "net/http"

type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(code int, message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func NewBadRequestResponse(message string) *BaseResponse {
	return NewBaseResponse(http.StatusBadRequest, message, nil)
}

func NewSuccessResponse(message string, data interface{}) *BaseResponse {
	return NewBaseResponse(http.StatusOK, message, data)
}

// DashboardSummary aggregates every subscriber's ledger for the admin
// dashboard.
type DashboardSummary struct {
	Users   int64   `json:"users"`
	Trades  int64   `json:"trades"`
	Wins    int64   `json:"wins"`
	Losses  int64   `json:"losses"`
	WinRate float64 `json:"win_rate"`
}

// IssueCodeRequest is the admin code-generation payload.
type IssueCodeRequest struct {
	Days int `json:"days" validate:"required,min=1,max=365"`
}

type IssueCodeResponse struct {
	Code      string `json:"code"`
	ValidDays int    `json:"valid_days"`
}
