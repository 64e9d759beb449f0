package client

import (
	"time"

	"github.com/shopspring/decimal"

	"contafeira/internal/domain/catalog"
	"contafeira/internal/domain/expense"
	"contafeira/internal/domain/ledger"
)

// The remote store predates this client and keeps the original Portuguese
// table and column names. The mapping below is static per collection;
// nothing is discovered dynamically.

// remoteName maps a local collection to its remote table name.
func remoteName(c Collection) string {
	switch c {
	case CollectionProducts:
		return "produtos"
	case CollectionSales:
		return "vendas"
	case CollectionSummaries:
		return "resumos"
	case CollectionExpenses:
		return "despesas"
	case CollectionConfiguration:
		return "configuracao"
	}
	return string(c)
}

// Payment methods travel under their original labels.
var paymentToWire = map[ledger.PaymentMethod]string{
	ledger.PaymentPix:       "pix",
	ledger.PaymentCash:      "dinheiro",
	ledger.PaymentCard:      "cartao",
	ledger.PaymentCreditTab: "fiado",
}

var paymentFromWire = map[string]ledger.PaymentMethod{
	"pix":      ledger.PaymentPix,
	"dinheiro": ledger.PaymentCash,
	"cartao":   ledger.PaymentCard,
	"fiado":    ledger.PaymentCreditTab,
}

type productWire struct {
	ID        string          `json:"id"`
	Nome      string          `json:"nome"`
	Preco     decimal.Decimal `json:"preco"`
	Custo     decimal.Decimal `json:"custo"`
	Estoque   *int64          `json:"estoque,omitempty"`
	Categoria string          `json:"categoria"`
	UserID    string          `json:"user_id"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func productToWire(p catalog.Product) productWire {
	return productWire{
		ID:        p.ID,
		Nome:      p.Name,
		Preco:     p.Price,
		Custo:     p.Cost,
		Estoque:   p.Stock,
		Categoria: p.Category,
		UserID:    p.TenantID,
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

func productFromWire(w productWire) catalog.Product {
	return catalog.Product{
		ID:        w.ID,
		Name:      w.Nome,
		Price:     w.Preco,
		Cost:      w.Custo,
		Stock:     w.Estoque,
		Category:  w.Categoria,
		TenantID:  w.UserID,
		Dirty:     false,
		UpdatedAt: w.UpdatedAt,
	}
}

type saleWire struct {
	ID             string          `json:"id"`
	NomeProduto    string          `json:"nome_produto"`
	Valor          decimal.Decimal `json:"valor"`
	Quantidade     int64           `json:"quantidade"`
	FormaPagamento string          `json:"forma_pagamento"`
	Cliente        *string         `json:"cliente,omitempty"`
	Data           string          `json:"data"`
	Hora           string          `json:"hora"`
	UserID         string          `json:"user_id"`
	ResumoID       *string         `json:"resumo_id,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func saleToWire(s ledger.Sale) saleWire {
	return saleWire{
		ID:             s.ID,
		NomeProduto:    s.ProductName,
		Valor:          s.Amount,
		Quantidade:     s.Quantity,
		FormaPagamento: paymentToWire[s.PaymentMethod],
		Cliente:        s.CustomerName,
		Data:           s.BusinessDate,
		Hora:           s.TimeOfDay,
		UserID:         s.TenantID,
		ResumoID:       s.SummaryID,
		UpdatedAt:      s.UpdatedAt.UTC(),
	}
}

func saleFromWire(w saleWire) ledger.Sale {
	method, ok := paymentFromWire[w.FormaPagamento]
	if !ok {
		method = ledger.PaymentMethod(w.FormaPagamento)
	}
	return ledger.Sale{
		ID:            w.ID,
		ProductName:   w.NomeProduto,
		Amount:        w.Valor,
		Quantity:      w.Quantidade,
		PaymentMethod: method,
		CustomerName:  w.Cliente,
		BusinessDate:  w.Data,
		TimeOfDay:     w.Hora,
		TenantID:      w.UserID,
		SummaryID:     w.ResumoID,
		Dirty:         false,
		UpdatedAt:     w.UpdatedAt,
	}
}

type summaryWire struct {
	ID               string          `json:"id"`
	Data             string          `json:"data"`
	Total            decimal.Decimal `json:"total"`
	TotalPix         decimal.Decimal `json:"total_pix"`
	TotalDinheiro    decimal.Decimal `json:"total_dinheiro"`
	TotalCartao      decimal.Decimal `json:"total_cartao"`
	TotalFiado       decimal.Decimal `json:"total_fiado"`
	TotalCustos      decimal.Decimal `json:"total_custos"`
	QuantidadeVendas int64           `json:"quantidade_vendas"`
	UserID           string          `json:"user_id"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func summaryToWire(s ledger.DailySummary) summaryWire {
	return summaryWire{
		ID:               s.ID,
		Data:             s.BusinessDate,
		Total:            s.Total,
		TotalPix:         s.TotalPix,
		TotalDinheiro:    s.TotalCash,
		TotalCartao:      s.TotalCard,
		TotalFiado:       s.TotalFiado,
		TotalCustos:      s.TotalCost,
		QuantidadeVendas: s.SaleCount,
		UserID:           s.TenantID,
		UpdatedAt:        s.UpdatedAt.UTC(),
	}
}

func summaryFromWire(w summaryWire) ledger.DailySummary {
	return ledger.DailySummary{
		ID:           w.ID,
		BusinessDate: w.Data,
		Total:        w.Total,
		TotalPix:     w.TotalPix,
		TotalCash:    w.TotalDinheiro,
		TotalCard:    w.TotalCartao,
		TotalFiado:   w.TotalFiado,
		TotalCost:    w.TotalCustos,
		SaleCount:    w.QuantidadeVendas,
		TenantID:     w.UserID,
		Dirty:        false,
		UpdatedAt:    w.UpdatedAt,
	}
}

type expenseWire struct {
	ID        string          `json:"id"`
	Descricao string          `json:"descricao"`
	Valor     decimal.Decimal `json:"valor"`
	Categoria string          `json:"categoria"`
	Data      string          `json:"data"`
	UserID    string          `json:"user_id"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func expenseToWire(e expense.Expense) expenseWire {
	return expenseWire{
		ID:        e.ID,
		Descricao: e.Description,
		Valor:     e.Amount,
		Categoria: e.Category,
		Data:      e.Date,
		UserID:    e.TenantID,
		UpdatedAt: e.UpdatedAt.UTC(),
	}
}

func expenseFromWire(w expenseWire) expense.Expense {
	return expense.Expense{
		ID:          w.ID,
		Description: w.Descricao,
		Amount:      w.Valor,
		Category:    w.Categoria,
		Date:        w.Data,
		TenantID:    w.UserID,
		Dirty:       false,
		UpdatedAt:   w.UpdatedAt,
	}
}

type configWire struct {
	ID          string    `json:"id"`
	NomeBarraca string    `json:"nome_barraca"`
	UserID      string    `json:"user_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func configToWire(c catalog.Configuration) configWire {
	return configWire{
		ID:          c.ID,
		NomeBarraca: c.BusinessName,
		UserID:      c.TenantID,
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func configFromWire(w configWire) catalog.Configuration {
	return catalog.Configuration{
		ID:           w.ID,
		BusinessName: w.NomeBarraca,
		TenantID:     w.UserID,
		Dirty:        false,
		UpdatedAt:    w.UpdatedAt,
	}
}
