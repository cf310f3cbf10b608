package handler

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/orgalife/storefront/internal/domain/order"
)

// maxSubmissionBytes bounds order submission bodies.
const maxSubmissionBytes = 1 << 20

// readSubmission extracts the raw order document from the request. Plain
// JSON bodies are read directly; multipart submissions carry the document in
// the orderData form field (the shape legacy storefront clients send).
func readSubmission(r *http.Request) ([]byte, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
			return nil, errors.Wrap(err, "parse multipart form")
		}
		payload := r.FormValue("orderData")
		if payload == "" {
			return nil, errors.New("orderData field is required")
		}
		return []byte(payload), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxSubmissionBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return data, nil
}

// decodeSubmission parses a raw order document. Two legacy shapes are
// accepted: items may arrive as "items" or "cartItems", and customer fields
// under either the customer-prefixed or the bare spelling. The primary name
// wins when both are present. Client-sent "total" is advisory and skipped.
func decodeSubmission(data []byte) (order.Submission, error) {
	var (
		sub                                 order.Submission
		name, phone, address                string
		legacyName, legacyPhone, legacyAddr string
		items, cartItems                    []order.SubmittedItem
	)

	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "customerName":
			name, err = d.Str()
		case "name":
			legacyName, err = d.Str()
		case "customerPhone":
			phone, err = d.Str()
		case "phone":
			legacyPhone, err = d.Str()
		case "customerAddress":
			address, err = d.Str()
		case "address":
			legacyAddr, err = d.Str()
		case "items":
			items, err = decodeItems(d)
		case "cartItems":
			cartItems, err = decodeItems(d)
		case "discountCode":
			if d.Next() == jx.Null {
				return d.Null()
			}
			sub.DiscountCode, err = d.Str()
		default:
			// Unknown fields (including client-computed totals) are ignored.
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return order.Submission{}, errors.Wrap(err, "decode submission")
	}

	sub.CustomerName = firstNonEmpty(name, legacyName)
	sub.CustomerPhone = firstNonEmpty(phone, legacyPhone)
	sub.CustomerAddress = firstNonEmpty(address, legacyAddr)
	if items != nil {
		sub.Items = items
	} else {
		sub.Items = cartItems
	}
	return sub, nil
}

func decodeItems(d *jx.Decoder) ([]order.SubmittedItem, error) {
	var items []order.SubmittedItem
	err := d.Arr(func(d *jx.Decoder) error {
		var it order.SubmittedItem
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				it.ID, err = d.Str()
			case "name":
				it.Name, err = d.Str()
			case "price":
				// Strict: a malformed price is a rejection, not a zero.
				it.Price, err = d.Int64()
			case "image":
				it.Image, err = d.Str()
			case "category":
				it.Category, err = d.Str()
			case "description":
				it.Description, err = d.Str()
			case "quantity", "qty":
				it.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		})
		if err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	return items, err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
