package domain

import (
	"testing"
	"time"
)

func TestCalcularNivelParceria(t *testing.T) {
	tests := []struct {
		kg   float64
		want NivelParceria
	}{
		{0, NivelInicial},
		{4.9, NivelInicial},
		{5, NivelInicial},
		{39.9, NivelInicial},
		{40, NivelAvancado},
		{79.9, NivelAvancado},
		{80, NivelElite},
		{200, NivelElite},
	}
	for _, tt := range tests {
		if got := CalcularNivelParceria(tt.kg); got != tt.want {
			t.Errorf("CalcularNivelParceria(%v) = %s, want %s", tt.kg, got, tt.want)
		}
	}
}

func TestTaxaCashback(t *testing.T) {
	tests := []struct {
		nivel NivelParceria
		want  float64
	}{
		{NivelInicial, 0.015},
		{NivelAvancado, 0.015},
		{NivelElite, 0.02},
	}
	for _, tt := range tests {
		if got := TaxaCashback(tt.nivel); got != tt.want {
			t.Errorf("TaxaCashback(%s) = %v, want %v", tt.nivel, got, tt.want)
		}
	}
}

func TestNivelParceriaRank(t *testing.T) {
	if !NivelElite.Atende(NivelInicial) {
		t.Error("elite deve atender benefícios de nível inicial")
	}
	if !NivelAvancado.Atende(NivelAvancado) {
		t.Error("avançado deve atender benefícios de nível avançado")
	}
	if NivelInicial.Atende(NivelElite) {
		t.Error("inicial não deve atender benefícios de nível elite")
	}
}

func TestProximaEntregaAutomatica(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	tests := []struct {
		name string
		hoje time.Time
		dia  int
		want time.Time
		ok   bool
	}{
		{"dia 15 antes do corte", day(2025, time.March, 10), 15, day(2025, time.March, 15), true},
		{"dia 15 no corte", day(2025, time.March, 15), 15, day(2025, time.March, 15), true},
		{"dia 15 após o corte", day(2025, time.March, 16), 15, day(2025, time.April, 15), true},
		{"dia 15 dezembro vira janeiro", day(2025, time.December, 20), 15, day(2026, time.January, 15), true},
		{"dia 30 antes do corte", day(2025, time.March, 28), 30, day(2025, time.March, 30), true},
		{"dia 30 após o corte", day(2025, time.March, 29), 30, day(2025, time.April, 30), true},
		{"dia 30 entrando em fevereiro", day(2025, time.January, 31), 30, day(2025, time.February, 28), true},
		{"dia 30 em fevereiro", day(2025, time.February, 10), 30, day(2025, time.February, 28), true},
		{"dia inválido", day(2025, time.March, 10), 20, time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ProximaEntregaAutomatica(tt.hoje, tt.dia)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("data = %s, want %s", got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestNumPages(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := NumPages(tt.total, tt.perPage); got != tt.want {
			t.Errorf("NumPages(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}
