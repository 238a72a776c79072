package gateway

import (
	"strconv"
	"time"

	"github.com/iho/transferhub/internal/domain"
)

const (
	requestTimeLayout = "2006-01-02T15:04:05"
	queryDateLayout   = "2006-01-02"

	flagYes = "Y"
	flagNo  = "N"
)

type header struct {
	System         string `json:"system"`
	ReferenceID    string `json:"referenceId"`
	UserName       string `json:"userName"`
	CustomerNumber string `json:"customerNumber"`
	RequestTime    string `json:"requestTime"`
	Language       string `json:"language"`
}

type envelope struct {
	Header  header `json:"Header"`
	Details any    `json:"Details"`
}

func (c *Client) newEnvelope(reference, customerNumber string, details any) envelope {
	return envelope{
		Header: header{
			System:         c.cfg.System,
			ReferenceID:    reference,
			UserName:       c.cfg.UserName,
			CustomerNumber: customerNumber,
			RequestTime:    c.now().In(c.cfg.Location).Format(requestTimeLayout),
			Language:       c.cfg.Language,
		},
		Details: details,
	}
}

// transferDetails renders a single transfer. A nil or zero second leg is sent disabled.
func transferDetails(o domain.TransferOrder) (map[string]string, error) {
	amount, err := domain.EncodeAmount(o.Amount)
	if err != nil {
		return nil, err
	}

	d := map[string]string{
		"@TRFCCY":   o.Currency,
		"@SRCACC":   o.SourceAccount,
		"@DSTACC":   o.DestinationAccount,
		"@TRFAMT":   amount,
		"@DTCD":     o.DebitCode,
		"@CTCD":     o.CreditCode,
		"@NR2":      domain.TrimNarrative(o.Narrative),
		"@APLYTRN2": flagNo,
		"@TRFAMT2":  domain.ZeroWireAmount,
		"@SRCACC2":  "",
		"@DSTACC2":  "",
		"@DTCD2":    "",
		"@CTCD2":    "",
	}

	if leg := o.SecondLeg; leg != nil && leg.Amount.IsPositive() {
		amount2, err := domain.EncodeAmount(leg.Amount)
		if err != nil {
			return nil, err
		}
		d["@APLYTRN2"] = flagYes
		d["@TRFAMT2"] = amount2
		d["@SRCACC2"] = leg.SourceAccount
		d["@DSTACC2"] = leg.DestinationAccount
		d["@DTCD2"] = leg.DebitCode
		d["@CTCD2"] = leg.CreditCode
	}

	return d, nil
}

type groupDetails struct {
	HID           string              `json:"@HID"`
	Apply         string              `json:"@APPLY"`
	ApplyAll      string              `json:"@APPLYALL"`
	GroupAccounts []map[string]string `json:"GroupAccounts"`
}

func groupTransferDetails(o domain.GroupTransferOrder) (groupDetails, error) {
	lines := make([]map[string]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		amount, err := domain.EncodeAmount(l.Amount)
		if err != nil {
			return groupDetails{}, err
		}
		commission, err := domain.EncodeAmount(l.Commission)
		if err != nil {
			return groupDetails{}, err
		}
		gross, err := domain.EncodeAmount(l.Amount.Add(l.Commission))
		if err != nil {
			return groupDetails{}, err
		}

		debit := l.DebitAccount
		if debit == "" {
			debit = o.DebitAccount
		}

		lines = append(lines, map[string]string{
			"YBCD06DID":   l.LineID,
			"YBCD06DACC":  debit,
			"YBCD06CACC":  l.CreditAccount,
			"YBCD06AMT":   amount,
			"YBCD06CCY":   o.Currency,
			"YBCD06AMTC":  commission,
			"YBCD06TAMT":  gross,
			"YBCD06COMA":  l.CommissionAccount,
			"YBCD06NARR":  domain.TrimNarrative(l.Narrative),
			"YBCD06RESP":  "",
			"YBCD06RESPD": "",
		})
	}

	return groupDetails{
		HID:           o.BatchID,
		Apply:         flagYes,
		ApplyAll:      flagNo,
		GroupAccounts: lines,
	}, nil
}

func reversalDetails(o domain.ReversalOrder) (map[string]string, error) {
	amount, err := domain.EncodeAmount(o.Amount)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"@TRFREFORG": o.OriginalReference,
		"@TRFCCY":    o.Currency,
		"@SRCACC":    o.SourceAccount,
		"@DSTACC":    o.DestinationAccount,
		"@TRFAMT":    amount,
		"@APLYTRN2":  flagNo,
		"@NR2":       domain.TrimNarrative(o.Narrative),
	}, nil
}

func statementDetails(q domain.StatementQuery) map[string]string {
	d := map[string]string{
		"@ACC":   q.Account,
		"@BYDTE": flagNo,
		"@FDATE": "",
		"@TDATE": "",
		"@BYNBR": flagNo,
		"@NBR":   "",
	}

	if q.ByDate() {
		d["@BYDTE"] = flagYes
		d["@FDATE"] = formatDate(q.From)
		d["@TDATE"] = formatDate(q.To)
	}
	if q.Count > 0 {
		d["@BYNBR"] = flagYes
		d["@NBR"] = strconv.Itoa(q.Count)
	}

	return d
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(queryDateLayout)
}
