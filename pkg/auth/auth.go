// Package auth builds the credential bundle the Marvel gateway expects on
// every request of an extraction session.
package auth

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"time"
)

// PageSize is the fixed page size requested per call. It is also the maximum
// page size the gateway accepts.
const PageSize = 100

var (
	// ErrMissingPublicKey indicates an empty public key.
	ErrMissingPublicKey = errors.New("public key must not be empty")

	// ErrMissingPrivateKey indicates an empty private key.
	ErrMissingPrivateKey = errors.New("private key must not be empty")
)

// Params is the query parameter bundle shared by every request of one
// extraction session. Timestamp and hash are computed once at construction;
// only Offset changes as pagination advances.
type Params struct {
	// TS is the session timestamp in decimal seconds.
	TS string

	// APIKey is the public key, sent as the apikey query parameter.
	APIKey string

	// Hash is md5(ts + privateKey + publicKey), lowercase hex.
	Hash string

	// Limit is the page size requested per call, fixed at PageSize.
	Limit int

	// Offset is the zero-based index of the first record of the next page.
	// The fetch loop mutates it in place between pages.
	Offset int
}

// NewParams builds the session parameters from the credential pair.
// The timestamp and digest are deliberately NOT recomputed per page: all
// pages of a session share one ts and hash, only the offset advances.
func NewParams(publicKey, privateKey string) (*Params, error) {
	return newParamsAt(publicKey, privateKey, time.Now())
}

// newParamsAt fixes the clock so digest vectors stay reproducible in tests.
func newParamsAt(publicKey, privateKey string, now time.Time) (*Params, error) {
	if publicKey == "" {
		return nil, ErrMissingPublicKey
	}
	if privateKey == "" {
		return nil, ErrMissingPrivateKey
	}

	ts := timestamp(now)
	return &Params{
		TS:     ts,
		APIKey: publicKey,
		Hash:   digest(ts, privateKey, publicKey),
		Limit:  PageSize,
		Offset: 0,
	}, nil
}

// timestamp renders wall-clock time as decimal seconds with sub-second
// precision, matching the ts format the gateway signs against.
func timestamp(now time.Time) string {
	sec := float64(now.UnixMicro()) / 1e6
	return strconv.FormatFloat(sec, 'f', 6, 64)
}

// digest concatenates timestamp, private key and public key in that exact
// order with no separators and returns the lowercase hex md5 sum. The
// gateway recomputes the same digest server-side to authorize the call, so
// the hash function and field order are part of the wire contract.
func digest(ts, privateKey, publicKey string) string {
	sum := md5.Sum([]byte(ts + privateKey + publicKey))
	return hex.EncodeToString(sum[:])
}

// Values renders the bundle as URL query parameters for the current offset.
func (p *Params) Values() url.Values {
	v := url.Values{}
	v.Set("ts", p.TS)
	v.Set("apikey", p.APIKey)
	v.Set("hash", p.Hash)
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("offset", strconv.Itoa(p.Offset))
	return v
}
