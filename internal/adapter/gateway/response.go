package gateway

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/iho/transferhub/internal/domain"
)

const returnCodeSuccess = "success"

// replyHeader is the outcome carried in every response header.
type replyHeader struct {
	success     bool
	code        string
	message     string
	referenceID string
	valid       bool
}

// readHeader extracts the header leniently. gjson still finds the header of a body whose
// tail is broken, which is the only case a malformed response counts as accepted.
func readHeader(body []byte) replyHeader {
	h := gjson.GetManyBytes(body, "Header.ReturnCode", "Header.ReturnMessage", "Header.referenceId")
	code := strings.TrimSpace(h[0].String())

	return replyHeader{
		success:     strings.EqualFold(code, returnCodeSuccess),
		code:        code,
		message:     h[1].String(),
		referenceID: strings.TrimSpace(h[2].String()),
		valid:       gjson.ValidBytes(body),
	}
}

// rejection turns a non-success header into the matching error.
func (h replyHeader) rejection() error {
	if !h.valid {
		return fmt.Errorf("%w: %w", domain.ErrGatewayRejected, domain.ErrMalformedResponse)
	}
	return &domain.GatewayRejectedError{Code: h.code, Message: h.message}
}

func parseAck(body []byte, reference string) (*domain.GatewayAck, error) {
	h := readHeader(body)
	if !h.success {
		return nil, h.rejection()
	}

	bankRef := h.referenceID
	if bankRef == "" {
		bankRef = reference
	}

	return &domain.GatewayAck{
		Reference:     reference,
		BankReference: bankRef,
		ReturnMessage: h.message,
	}, nil
}

// groupLinePaths lists where gateways have been seen to put the per-line array.
var groupLinePaths = []string{
	"Details.Details.GroupAccounts",
	"Details.GroupAccounts",
}

func parseGroupResult(body []byte, batchID string) *domain.GroupTransferResult {
	h := readHeader(body)
	result := &domain.GroupTransferResult{
		BatchID:       batchID,
		HeaderSuccess: h.success,
		ReturnMessage: h.message,
	}

	if !h.valid {
		return result
	}

	lines, ok := findGroupLines(body)
	if !ok {
		return result
	}

	for _, line := range lines.Array() {
		if !line.IsObject() {
			result.Lines = nil
			return result
		}
		result.Lines = append(result.Lines, domain.LineOutcome{
			LineID:        strings.TrimSpace(line.Get("YBCD06DID").String()),
			CreditAccount: strings.TrimSpace(line.Get("YBCD06CACC").String()),
			Code:          strings.TrimSpace(line.Get("YBCD06RESP").String()),
			Description:   line.Get("YBCD06RESPD").String(),
		})
	}
	result.LinesParsed = true

	return result
}

func findGroupLines(body []byte) (gjson.Result, bool) {
	for _, path := range groupLinePaths {
		r := gjson.GetBytes(body, path)
		if r.IsArray() {
			return r, true
		}
	}

	// Some gateway versions return the inner Details as an encoded JSON string.
	inner := gjson.GetBytes(body, "Details.Details")
	if inner.Type == gjson.String && gjson.Valid(inner.Str) {
		r := gjson.Get(inner.Str, "GroupAccounts")
		if r.IsArray() {
			return r, true
		}
	}

	return gjson.Result{}, false
}

func parseCustomerInfo(body []byte, customerID string) (*domain.CustomerInfo, error) {
	h := readHeader(body)
	if !h.success {
		return nil, h.rejection()
	}
	if !h.valid {
		return nil, domain.ErrMalformedResponse
	}

	code := gjson.GetBytes(body, "Details.STCOD")
	if !code.Exists() {
		code = gjson.GetBytes(body, "Details.Details.STCOD")
	}

	return &domain.CustomerInfo{
		CustomerID: customerID,
		StatusCode: strings.TrimSpace(code.String()),
	}, nil
}

// parseDetails returns the Details object of an accepted lookup unchanged.
func parseDetails(body []byte) ([]byte, error) {
	h := readHeader(body)
	if !h.success {
		return nil, h.rejection()
	}
	if !h.valid {
		return nil, domain.ErrMalformedResponse
	}

	details := gjson.GetBytes(body, "Details")
	if !details.Exists() {
		return []byte("null"), nil
	}
	return []byte(details.Raw), nil
}
