package domain

import "time"

// NivelParceria is the partnership tier derived from the client's
// monthly purchase volume. It drives the cashback rate and which
// supplier benefits the client qualifies for.
type NivelParceria string

const (
	NivelInicial  NivelParceria = "inicial"
	NivelAvancado NivelParceria = "avancado"
	NivelElite    NivelParceria = "elite"
)

// Valid reports whether n is one of the three known tiers.
func (n NivelParceria) Valid() bool {
	switch n {
	case NivelInicial, NivelAvancado, NivelElite:
		return true
	}
	return false
}

// Rank orders tiers: inicial < avancado < elite.
func (n NivelParceria) Rank() int {
	switch n {
	case NivelElite:
		return 2
	case NivelAvancado:
		return 1
	default:
		return 0
	}
}

// Atende reports whether a client at tier n qualifies for an offer
// gated at minimo. Qualification is cumulative: elite sees everything,
// avancado sees avancado and inicial, inicial sees only inicial.
func (n NivelParceria) Atende(minimo NivelParceria) bool {
	return n.Rank() >= minimo.Rank()
}

// CalcularNivelParceria derives the tier from the monthly volume in kg.
// Everything under 40 kg is inicial; the legacy 5 kg threshold never
// produced a distinct tier and is intentionally not resurrected here.
func CalcularNivelParceria(totalKgMes float64) NivelParceria {
	switch {
	case totalKgMes >= 80:
		return NivelElite
	case totalKgMes >= 40:
		return NivelAvancado
	default:
		return NivelInicial
	}
}

// TaxaCashback returns the accrual rate for a tier. Only elite earns
// the higher rate; inicial and avancado share 1.5%.
func TaxaCashback(n NivelParceria) float64 {
	if n == NivelElite {
		return 0.02
	}
	return 0.015
}

// ProximaEntregaAutomatica computes the next delivery date for a
// recurring order configured for day 15 or 30. If the target day has
// not passed this month the delivery stays in the current month,
// otherwise it moves to the next one (December wraps to January).
// Day 30 uses 28 as the in-month cutoff and clamps to the 28th in
// months without a 30th, matching the established scheduling rule.
// ok is false when dia is not a supported day.
func ProximaEntregaAutomatica(hoje time.Time, dia int) (data time.Time, ok bool) {
	switch dia {
	case 15:
		if hoje.Day() <= 15 {
			return dataNoMes(hoje.Year(), hoje.Month(), 15), true
		}
		y, m := proximoMes(hoje.Year(), hoje.Month())
		return dataNoMes(y, m, 15), true
	case 30:
		if hoje.Day() <= 28 {
			return dataNoMes(hoje.Year(), hoje.Month(), clampDia30(hoje.Year(), hoje.Month())), true
		}
		y, m := proximoMes(hoje.Year(), hoje.Month())
		return dataNoMes(y, m, clampDia30(y, m)), true
	}
	return time.Time{}, false
}

func proximoMes(ano int, mes time.Month) (int, time.Month) {
	if mes == time.December {
		return ano + 1, time.January
	}
	return ano, mes + 1
}

// clampDia30 returns 28 for months that have no 30th day (February),
// 30 otherwise. The fallback is a fixed clamp, not last-day-of-month.
func clampDia30(ano int, mes time.Month) int {
	if mes == time.February {
		return 28
	}
	return 30
}

func dataNoMes(ano int, mes time.Month, dia int) time.Time {
	return time.Date(ano, mes, dia, 0, 0, 0, 0, time.UTC)
}
