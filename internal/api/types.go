package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type itemsRequest struct {
	Items []float64 `json:"items" validate:"required,min=1,dive,gt=0,lte=1"`
}

// solveRequest falls back to the stored items when Items is omitted.
type solveRequest struct {
	Items []float64 `json:"items" validate:"omitempty,dive,gt=0,lte=1"`
}

type feasibleRequest struct {
	Items []float64 `json:"items" validate:"omitempty,dive,gt=0,lte=1"`
	Bins  *int      `json:"bins" validate:"required,gte=0"`
}

type itemsResponse struct {
	Items     []float64 `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
	Message   string    `json:"message,omitempty"`
}

type feasibleResponse struct {
	Items    []float64 `json:"items"`
	Bins     int       `json:"bins"`
	Feasible bool      `json:"feasible"`
}

type minBinsResponse struct {
	Items             []float64 `json:"items"`
	MinBins           int       `json:"minBins"`
	LowerBound        int       `json:"lowerBound"`
	UpperBound        int       `json:"upperBound"`
	CalculationTimeMs int64     `json:"calculationTimeMs"`
}

type assignResponse struct {
	Items             []float64 `json:"items"`
	Assignment        []int     `json:"assignment"`
	Bins              int       `json:"bins"`
	Loads             []float64 `json:"loads"`
	CalculationTimeMs int64     `json:"calculationTimeMs"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// describeValidation flattens validator errors into "items[1] must be gt 0; ...".
func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s is %s", field, fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
