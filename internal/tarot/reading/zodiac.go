// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import "time"

// Sign is a western zodiac sign.
type Sign string

const (
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
	UnknownSign Sign = "Unknown"
)

// cusp is the first day of the sign that starts within a month, and the
// sign that covers the days before it.
type cusp struct {
	day    int
	sign   Sign
	before Sign
}

var cusps = [12]cusp{
	time.January - 1:   {20, Aquarius, Capricorn},
	time.February - 1:  {19, Pisces, Aquarius},
	time.March - 1:     {21, Aries, Pisces},
	time.April - 1:     {20, Taurus, Aries},
	time.May - 1:       {21, Gemini, Taurus},
	time.June - 1:      {21, Cancer, Gemini},
	time.July - 1:      {23, Leo, Cancer},
	time.August - 1:    {23, Virgo, Leo},
	time.September - 1: {23, Libra, Virgo},
	time.October - 1:   {23, Scorpio, Libra},
	time.November - 1:  {22, Sagittarius, Scorpio},
	time.December - 1:  {22, Capricorn, Sagittarius},
}

// ZodiacSign maps a birth month and day to its sign. Out-of-range months
// yield [UnknownSign].
func ZodiacSign(month time.Month, day int) Sign {
	if month < time.January || month > time.December {
		return UnknownSign
	}

	c := cusps[month-1]
	if day >= c.day {
		return c.sign
	}
	return c.before
}

// SignOf returns the sign of a birth date, read in UTC.
func SignOf(birthDate time.Time) Sign {
	utc := birthDate.UTC()
	return ZodiacSign(utc.Month(), utc.Day())
}
