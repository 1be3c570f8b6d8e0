package export

import (
	"fmt"
	"strings"

	"github.com/JayJamieson/sqlite-api/pkg/models"
)

// TableSeed renders a Prisma createMany call for t, honouring column
// visibility.
func TableSeed(t *models.Table) (Payload, error) {
	block, err := seedBlock(t.Name, Records(t, true))
	if err != nil {
		return Payload{}, err
	}

	return Payload{
		Filename:    strings.ToLower(t.Name) + "-seed.ts",
		ContentType: ContentTypeText,
		Data:        []byte(block),
	}, nil
}

// FullSeed renders one createMany call per table, separated by a blank line.
// Unlike TableSeed it always includes every column: visibility flags only
// shape the single-table exports.
func FullSeed(tables []*models.Table) (Payload, error) {
	blocks := make([]string, 0, len(tables))
	for _, t := range tables {
		block, err := seedBlock(t.Name, Records(t, false))
		if err != nil {
			return Payload{}, err
		}
		blocks = append(blocks, block)
	}

	return Payload{
		Filename:    FullSeedFilename,
		ContentType: ContentTypeText,
		Data:        []byte(strings.Join(blocks, "\n\n")),
	}, nil
}

func seedBlock(name string, records []Record) (string, error) {
	data, err := encode(records, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode rows of %s: %w", name, err)
	}

	return fmt.Sprintf("await prisma.%s.createMany({\n  data: %s,\n});", strings.ToLower(name), data), nil
}
