package oidc

import (
	"encoding/json"
	"time"
)

// Audience is the aud claim, which the wire format allows to be
// either a single string or an array of strings.
type Audience []string

func (a *Audience) UnmarshalJSON(text []byte) error {
	var i interface{}
	err := json.Unmarshal(text, &i)
	if err != nil {
		return err
	}
	switch aud := i.(type) {
	case []interface{}:
		*a = make([]string, len(aud))
		for i, audience := range aud {
			audString, ok := audience.(string)
			if !ok {
				return ErrAudienceType
			}
			(*a)[i] = audString
		}
	case string:
		*a = []string{aud}
	}
	return nil
}

func (a Audience) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// Time is a Unix timestamp claim, such as iat.
type Time time.Time

func (t *Time) UnmarshalJSON(data []byte) error {
	var i int64
	if err := json.Unmarshal(data, &i); err != nil {
		return err
	}
	*t = Time(time.Unix(i, 0).UTC())
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Unix())
}

// AsTime returns the claim as a time.Time.
// The zero value means the claim was not set.
func (t Time) AsTime() time.Time {
	return time.Time(t)
}

// IsZero reports whether the claim was absent from the token.
func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

// FromTime converts a time.Time into a Unix timestamp claim.
func FromTime(t time.Time) Time {
	return Time(time.Unix(t.Unix(), 0).UTC())
}

// NowTime returns the current time as a Time claim,
// rounded down to second precision.
func NowTime() Time {
	return FromTime(time.Now())
}
