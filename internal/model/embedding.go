package model

import (
	"fmt"
	"strconv"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// VectorDim is the embedding dimensionality the schema is created with.
const VectorDim = 384

// Embedding wraps a pgvector value so the same column works on every
// dialect: a native vector(n) column on PostgreSQL, and the vector's text
// form ("[0.1,0.2,...]") on the others.
type Embedding struct {
	pgvector.Vector
}

func NewEmbedding(vec []float32) Embedding {
	return Embedding{Vector: pgvector.NewVector(vec)}
}

// GormDBDataType picks the column type per dialect. The dimension comes from
// the `dim` gorm tag setting and falls back to VectorDim.
func (Embedding) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	dim := VectorDim
	if raw, ok := field.TagSettings["DIM"]; ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			dim = parsed
		}
	}
	switch db.Dialector.Name() {
	case "postgres":
		return fmt.Sprintf("vector(%d)", dim)
	case "mysql":
		return "longtext"
	default:
		return "text"
	}
}
