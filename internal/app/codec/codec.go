// Package codec defines the binary wire format of every stored entity.
//
// Values are encoded as protocol-buffer messages (protowire framing) with a
// fixed field layout per entity type, so records written by earlier
// deployments remain readable. Decoding is strict: unknown field numbers,
// wire-type mismatches, duplicate scalar fields and truncated frames all
// fail with a decode error rather than producing a partially-filled value.
//
// For every valid entity value e, Decode(Encode(e)) == e.
package codec

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/tunegrid/service_layer/internal/app/domain/catalog"
	"github.com/tunegrid/service_layer/internal/app/domain/profile"
	"github.com/tunegrid/service_layer/internal/app/domain/wallet"
	"github.com/tunegrid/service_layer/internal/errors"
)

// Codec encodes and decodes one entity type. Decode returns either a fully
// populated value or an error, never both.
type Codec[T any] struct {
	schema string
	encode func(T) []byte
	decode func([]byte) (T, error)
}

// Schema names the entity type this codec handles.
func (c Codec[T]) Schema() string { return c.schema }

// Encode renders v in the entity's wire format. It is total for any valid
// in-memory value.
func (c Codec[T]) Encode(v T) []byte { return c.encode(v) }

// Decode parses data against the entity's schema.
func (c Codec[T]) Decode(data []byte) (T, error) {
	v, err := c.decode(data)
	if err != nil {
		var zero T
		return zero, errors.DecodeFailed(c.schema, err)
	}
	return v, nil
}

// Codecs for each stored entity type. Field numbers are part of the wire
// contract and must not be reassigned.
var (
	Genre = Codec[catalog.Genre]{
		schema: "genre",
		encode: encodeGenre,
		decode: decodeGenre,
	}
	UserProfile = Codec[profile.UserProfile]{
		schema: "user_profile",
		encode: encodeProfile,
		decode: decodeProfile,
	}
	CreditWallet = Codec[wallet.CreditWallet]{
		schema: "credit_wallet",
		encode: encodeWallet,
		decode: decodeWallet,
	}
	ListenHistory = Codec[catalog.ListenHistory]{
		schema: "listen_history",
		encode: encodeHistory,
		decode: decodeHistory,
	}
)

// Genre wire layout: 1=id (bytes), 2=name (bytes), 3=listeners (varint).

func encodeGenre(g catalog.Genre) []byte {
	var b []byte
	b = appendString(b, 1, g.ID)
	b = appendString(b, 2, g.Name)
	b = appendInt32(b, 3, g.Listeners)
	return b
}

func decodeGenre(data []byte) (catalog.Genre, error) {
	var g catalog.Genre
	err := walkFields(data, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			return f.scalarString(&g.ID)
		case 2:
			return f.scalarString(&g.Name)
		case 3:
			return f.scalarInt32(&g.Listeners)
		default:
			return errUnknownField(num)
		}
	})
	if err != nil {
		return catalog.Genre{}, err
	}
	return g, nil
}

// UserProfile wire layout: 1=id (bytes), 2=username (bytes), 3=email
// (bytes), 4=subscription_level (varint), 5=history_key (bytes).

func encodeProfile(p profile.UserProfile) []byte {
	var b []byte
	b = appendString(b, 1, p.ID)
	b = appendString(b, 2, p.Username)
	b = appendString(b, 3, p.Email)
	b = appendInt32(b, 4, int32(p.SubscriptionLevel))
	b = appendString(b, 5, p.HistoryKey)
	return b
}

func decodeProfile(data []byte) (profile.UserProfile, error) {
	var p profile.UserProfile
	err := walkFields(data, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			return f.scalarString(&p.ID)
		case 2:
			return f.scalarString(&p.Username)
		case 3:
			return f.scalarString(&p.Email)
		case 4:
			var lvl int32
			if err := f.scalarInt32(&lvl); err != nil {
				return err
			}
			p.SubscriptionLevel = profile.SubscriptionLevel(lvl)
			return nil
		case 5:
			return f.scalarString(&p.HistoryKey)
		default:
			return errUnknownField(num)
		}
	})
	if err != nil {
		return profile.UserProfile{}, err
	}
	return p, nil
}

// CreditWallet wire layout: 1=coin_balance (varint), 2=credit_balance
// (varint).

func encodeWallet(w wallet.CreditWallet) []byte {
	var b []byte
	b = appendInt32(b, 1, w.CoinBalance)
	b = appendInt32(b, 2, w.CreditBalance)
	return b
}

func decodeWallet(data []byte) (wallet.CreditWallet, error) {
	var w wallet.CreditWallet
	err := walkFields(data, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			return f.scalarInt32(&w.CoinBalance)
		case 2:
			return f.scalarInt32(&w.CreditBalance)
		default:
			return errUnknownField(num)
		}
	})
	if err != nil {
		return wallet.CreditWallet{}, err
	}
	return w, nil
}

// ListenHistory wire layout: 1=genre_ids (repeated bytes).

func encodeHistory(h catalog.ListenHistory) []byte {
	var b []byte
	for _, id := range h.GenreIDs {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, id)
	}
	return b
}

func decodeHistory(data []byte) (catalog.ListenHistory, error) {
	var h catalog.ListenHistory
	err := walkFields(data, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			s, err := f.repeatedString()
			if err != nil {
				return err
			}
			h.GenreIDs = append(h.GenreIDs, s)
			return nil
		default:
			return errUnknownField(num)
		}
	})
	if err != nil {
		return catalog.ListenHistory{}, err
	}
	return h, nil
}
