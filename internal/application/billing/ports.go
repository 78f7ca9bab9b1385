package billing

import (
	"github.com/fatoora-tn/compta-api/internal/domain/entity"
)

// XMLGenerator port du générateur de document TEIF non signé.
type XMLGenerator interface {
	Generate(inv *entity.Invoice) ([]byte, error)
}
