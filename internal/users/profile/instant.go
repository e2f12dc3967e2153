// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/taibuivan/arcana/internal/platform/docstore"
)

// Encoding records how a date was represented in the stored document.
type Encoding int

const (
	EncodingNone Encoding = iota
	EncodingTimestamp
	EncodingEpochSeconds
	EncodingNumericString
)

// maxEpochSeconds is 9999-12-31T23:59:59Z, the last instant RFC 3339 can express.
const maxEpochSeconds = 253402300799

// Instant is the result of [DecodeInstant]. Time is meaningful only when Valid.
type Instant struct {
	Time     time.Time
	Encoding Encoding
	Valid    bool
}

// DecodeInstant is the single decoder for every stored date.
//
// Accepted encodings, all normalized to UTC:
//
//   - the store-native [docstore.Timestamp] (or a [time.Time]);
//   - a number of seconds since the Unix epoch, fractional part allowed;
//   - a string holding such a number, e.g. "1700000000".
//
// Anything else, including NaN, infinities and out-of-range numbers, yields
// an Instant with Valid false.
func DecodeInstant(value any) Instant {
	switch typed := value.(type) {
	case docstore.Timestamp:
		return valid(typed.Time(), EncodingTimestamp)
	case *docstore.Timestamp:
		if typed == nil {
			return Instant{}
		}
		return valid(typed.Time(), EncodingTimestamp)
	case time.Time:
		return valid(typed, EncodingTimestamp)
	case float64:
		return fromEpoch(typed, EncodingEpochSeconds)
	case float32:
		return fromEpoch(float64(typed), EncodingEpochSeconds)
	case int:
		return fromEpoch(float64(typed), EncodingEpochSeconds)
	case int32:
		return fromEpoch(float64(typed), EncodingEpochSeconds)
	case int64:
		return fromEpoch(float64(typed), EncodingEpochSeconds)
	case json.Number:
		return fromNumericString(typed.String(), EncodingEpochSeconds)
	case string:
		return fromNumericString(typed, EncodingNumericString)
	}
	return Instant{}
}

func valid(t time.Time, encoding Encoding) Instant {
	return Instant{Time: t.UTC().Round(0), Encoding: encoding, Valid: true}
}

func fromNumericString(raw string, encoding Encoding) Instant {
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Instant{}
	}
	return fromEpoch(seconds, encoding)
}

func fromEpoch(seconds float64, encoding Encoding) Instant {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || math.Abs(seconds) > maxEpochSeconds {
		return Instant{}
	}

	whole, fraction := math.Modf(seconds)
	nanos := int64(math.Round(fraction * 1e9))
	return valid(time.Unix(int64(whole), nanos), encoding)
}
