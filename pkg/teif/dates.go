package teif

import (
	"fmt"
	"time"
)

// Codes d'erreur stables du codec de dates (contrat externe).
const (
	CodeInvalidDateFormat = "ELF_INVALID_DATE_FORMAT"
	CodeInvalidPeriod     = "ELF_INVALID_PERIOD"
)

// Le standard écrit les années sur deux chiffres ; la fenêtre couverte est
// 2000-2099 (le TEIF est postérieur à 2000).
const yearBase = 2000

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// isLeapYear règle grégorienne proleptique : divisible par 4 et
// (non divisible par 100 ou divisible par 400).
func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ParseDate décode la forme jour ddMMyy (6 chiffres) en vérifiant la légalité
// calendaire (bornes de jour du mois, années bissextiles).
func ParseDate(s string) (time.Time, error) {
	if len(s) != 6 {
		return time.Time{}, codeErrorf(CodeInvalidDateFormat,
			"date %q : 6 chiffres ddMMyy attendus", s)
	}
	return parseDayPart(s)
}

// ParseDateTime décode la forme jour-heure ddMMyyHHmm (10 chiffres).
func ParseDateTime(s string) (time.Time, error) {
	if len(s) != 10 {
		return time.Time{}, codeErrorf(CodeInvalidDateFormat,
			"date-heure %q : 10 chiffres ddMMyyHHmm attendus", s)
	}
	day, err := parseDayPart(s[:6])
	if err != nil {
		return time.Time{}, err
	}
	hour, ok1 := atoi2(s[6:8])
	minute, ok2 := atoi2(s[8:10])
	if !ok1 || !ok2 || hour > 23 || minute > 59 {
		return time.Time{}, codeErrorf(CodeInvalidDateFormat,
			"date-heure %q : heure HHmm invalide", s)
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}

// ParsePeriod décode la forme période ddMMyy-ddMMyy (13 caractères, tiret
// littéral en position 7). La période n'est valide que si les deux bornes sont
// des dates valides et que début <= fin (l'égalité est admise).
func ParsePeriod(s string) (start, end time.Time, err error) {
	if len(s) != 13 || s[6] != '-' {
		return time.Time{}, time.Time{}, codeErrorf(CodeInvalidPeriod,
			"période %q : forme ddMMyy-ddMMyy attendue", s)
	}
	start, err = ParseDate(s[:6])
	if err != nil {
		return time.Time{}, time.Time{}, codeErrorf(CodeInvalidPeriod,
			"période %q : borne de début invalide", s)
	}
	end, err = ParseDate(s[7:])
	if err != nil {
		return time.Time{}, time.Time{}, codeErrorf(CodeInvalidPeriod,
			"période %q : borne de fin invalide", s)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, codeErrorf(CodeInvalidPeriod,
			"période %q : le début est postérieur à la fin", s)
	}
	return start, end, nil
}

// FormatDate encode une date en ddMMyy (zéros en tête, année = deux derniers
// chiffres de l'année sur quatre chiffres).
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d%02d%02d", t.Day(), int(t.Month()), t.Year()%100)
}

// FormatDateTime encode une date-heure en ddMMyyHHmm.
func FormatDateTime(t time.Time) string {
	return FormatDate(t) + fmt.Sprintf("%02d%02d", t.Hour(), t.Minute())
}

// FormatPeriod encode une période en ddMMyy-ddMMyy.
func FormatPeriod(start, end time.Time) string {
	return FormatDate(start) + "-" + FormatDate(end)
}

// IsValidDate prédicat sur la forme jour.
func IsValidDate(s string) bool { _, err := ParseDate(s); return err == nil }

// IsValidDateTime prédicat sur la forme jour-heure.
func IsValidDateTime(s string) bool { _, err := ParseDateTime(s); return err == nil }

// IsValidPeriod prédicat sur la forme période.
func IsValidPeriod(s string) bool { _, _, err := ParsePeriod(s); return err == nil }

// parseDayPart décode ddMMyy déjà vérifié en longueur, avec contrôle calendaire.
func parseDayPart(s string) (time.Time, error) {
	day, ok1 := atoi2(s[0:2])
	month, ok2 := atoi2(s[2:4])
	yy, ok3 := atoi2(s[4:6])
	if !ok1 || !ok2 || !ok3 {
		return time.Time{}, codeErrorf(CodeInvalidDateFormat,
			"date %q : caractère non numérique", s)
	}
	year := yearBase + yy
	if month < 1 || month > 12 {
		return time.Time{}, codeErrorf(CodeInvalidDateFormat,
			"date %q : mois %02d hors bornes", s, month)
	}
	max := daysInMonth[month]
	if month == 2 && isLeapYear(year) {
		max = 29
	}
	if day < 1 || day > max {
		return time.Time{}, codeErrorf(CodeInvalidDateFormat,
			"date %q : jour %02d invalide pour %02d/%04d", s, day, month, year)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func atoi2(s string) (int, bool) {
	if len(s) != 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
