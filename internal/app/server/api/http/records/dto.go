package records

import "contafeira/internal/domain/record"

type pushInput struct {
	Collection string `path:"collection" doc:"Collection name (produtos, vendas, resumos, despesas, configuracao)"`
	Body       struct {
		Rows []record.Row `json:"rows"`
	}
}

type pushOutput struct {
	Body struct{}
}

type pullInput struct {
	Collection   string `path:"collection" doc:"Collection name (produtos, vendas, resumos, despesas, configuracao)"`
	UpdatedAfter string `query:"updated_after" doc:"RFC 3339 timestamp; only rows modified strictly after it are returned"`
}

type pullOutput struct {
	Body struct {
		Rows []record.Row `json:"rows"`
	}
}
