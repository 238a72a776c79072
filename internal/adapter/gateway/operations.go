package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/iho/transferhub/internal/domain"
)

// PostTransfer sends a single debit with its optional commission leg.
func (c *Client) PostTransfer(ctx context.Context, order domain.TransferOrder) (*domain.GatewayAck, error) {
	details, err := transferDetails(order)
	if err != nil {
		return nil, err
	}

	env := c.newEnvelope(order.Reference, domain.CustomerNumber(order.SourceAccount), details)
	body, err := c.call(ctx, "post_transfer", pathPostTransfer, env, moneyMoving)
	if err != nil {
		return nil, err
	}

	ack, err := parseAck(body, order.Reference)
	if err != nil {
		c.logRejection("post_transfer", order.Reference, err)
		return nil, err
	}
	return ack, nil
}

// PostGroupTransfer sends a payroll batch. A 2xx reply always yields a result; callers decide
// what a failing header or an unreadable line array means.
func (c *Client) PostGroupTransfer(ctx context.Context, order domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
	if len(order.Lines) == 0 {
		return nil, domain.ErrNoEligibleEntries
	}

	details, err := groupTransferDetails(order)
	if err != nil {
		return nil, err
	}

	env := c.newEnvelope(order.BatchID, domain.CustomerNumber(order.DebitAccount), details)
	body, err := c.call(ctx, "post_group_transfer", pathPostGroupTransfer, env, moneyMoving)
	if err != nil {
		return nil, err
	}

	result := parseGroupResult(body, order.BatchID)
	if !result.LinesParsed {
		c.logger.Warn().
			Str("batch_id", order.BatchID).
			Bool("header_success", result.HeaderSuccess).
			Msg("group transfer response without readable lines")
	}
	return result, nil
}

// ReverseTransfer compensates the transfer identified by order.OriginalReference.
// The header carries no customer number.
func (c *Client) ReverseTransfer(ctx context.Context, order domain.ReversalOrder) (*domain.GatewayAck, error) {
	if strings.TrimSpace(order.OriginalReference) == "" {
		return nil, domain.ErrMissingReference
	}

	details, err := reversalDetails(order)
	if err != nil {
		return nil, err
	}

	env := c.newEnvelope(order.Reference, "", details)
	body, err := c.call(ctx, "reverse_transfer", pathPostTransfer, env, moneyMoving)
	if err != nil {
		return nil, err
	}

	ack, err := parseAck(body, order.Reference)
	if err != nil {
		c.logRejection("reverse_transfer", order.Reference, err)
		return nil, err
	}
	return ack, nil
}

// GetCustomerInfo returns the customer's status code.
func (c *Client) GetCustomerInfo(ctx context.Context, customerID string) (*domain.CustomerInfo, error) {
	env := c.newEnvelope(c.refs.New(), customerID, map[string]string{"@CID": customerID})
	body, err := c.call(ctx, "get_customer_info", pathCustomerInfo, env, readOnly)
	if err != nil {
		return nil, err
	}

	return parseCustomerInfo(body, customerID)
}

// GetAccounts lists the customer's accounts with available balances.
func (c *Client) GetAccounts(ctx context.Context, customerID string) (*domain.AccountList, error) {
	env := c.newEnvelope(c.refs.New(), customerID, map[string]string{
		"@CID":    customerID,
		"@GETAVB": flagYes,
	})
	body, err := c.call(ctx, "get_accounts", pathAccounts, env, readOnly)
	if err != nil {
		return nil, err
	}

	details, err := parseDetails(body)
	if err != nil {
		return nil, err
	}
	return &domain.AccountList{CustomerID: customerID, Details: json.RawMessage(details)}, nil
}

// GetStatement returns account transactions by date range or by count.
func (c *Client) GetStatement(ctx context.Context, query domain.StatementQuery) (*domain.Statement, error) {
	env := c.newEnvelope(c.refs.New(), domain.CustomerNumber(query.Account), statementDetails(query))
	body, err := c.call(ctx, "get_statement", pathTransactions, env, readOnly)
	if err != nil {
		return nil, err
	}

	details, err := parseDetails(body)
	if err != nil {
		return nil, err
	}
	return &domain.Statement{Account: query.Account, Details: json.RawMessage(details)}, nil
}

func (c *Client) logRejection(op, reference string, err error) {
	event := c.logger.Warn().Str("operation", op).Str("reference", reference)

	var rejected *domain.GatewayRejectedError
	if errors.As(err, &rejected) {
		event = event.Str("return_code", rejected.Code)
	}
	event.Err(err).Msg("gateway rejected request")
}
