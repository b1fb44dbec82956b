package shared_test

import (
	"otms/shared"
	"otms/shared/constant"
	"otms/shared/dto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "zero total", total: 0, limit: 10, expected: 1},
		{name: "zero limit", total: 25, limit: 0, expected: 1},
		{name: "exact pages", total: 20, limit: 10, expected: 2},
		{name: "partial last page", total: 21, limit: 10, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTransformFields(t *testing.T) {
	req := struct {
		Notes  string `db:"notes"`
		Status string `db:"status"`
		Hidden string
	}{
		Notes:  "post-op care required",
		Hidden: "no db tag",
	}

	fields := shared.TransformFields(req, "admin")

	assert.Equal(t, "post-op care required", fields["notes"])
	assert.NotContains(t, fields, "status")
	assert.Equal(t, "admin", fields[constant.FieldModifiedBy])
	assert.Contains(t, fields, constant.FieldModifiedAt)
}

func TestFilterByID(t *testing.T) {
	group := shared.FilterByID("some-id", "id", "surgeries")

	where, args := group.GetWhereClause()
	assert.Equal(t, "(surgeries.id = :id)", where)
	assert.Equal(t, "some-id", args["id"])
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "surgery:get", shared.BuildCacheKey("surgery:get"))
	assert.Equal(t, "surgery:get:abc", shared.BuildCacheKey("surgery:get", "abc"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	filter := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}

	first := shared.BuildCacheKeyWithQuery("surgery:gets", params, filter)
	second := shared.BuildCacheKeyWithQuery("surgery:gets", params, filter)
	assert.Equal(t, first, second)

	params.Page = 2
	third := shared.BuildCacheKeyWithQuery("surgery:gets", params, filter)
	assert.NotEqual(t, first, third)
}
