package envelope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yeisme/storeclient/pkg/internal/envelope"
	"github.com/yeisme/storeclient/pkg/internal/types"
)

func TestValidate(t *testing.T) {
	byID := []types.Predicate{types.Eq("id", 1)}

	tests := []struct {
		name    string
		env     types.Envelope
		wantErr bool
	}{
		{"add with data", types.Envelope{FileType: "image", Operation: types.OpAdd, Data: types.Record{"a": 1}}, false},
		{"add empty", types.Envelope{FileType: "image", Operation: types.OpAdd}, true},
		{"check no predicates", types.Envelope{FileType: "all", Operation: types.OpCheck}, false},
		{"update no predicates", types.Envelope{FileType: "image", Operation: types.OpUpdate, Data: types.Record{"a": 1}}, true},
		{"update no data", types.Envelope{FileType: "image", Operation: types.OpUpdate, Where: byID}, true},
		{"update ok", types.Envelope{FileType: "image", Operation: types.OpUpdate, Data: types.Record{"a": 1}, Where: byID}, false},
		{"isdel no predicates", types.Envelope{FileType: "image", Operation: types.OpIsDel}, true},
		{"isdel ok", types.Envelope{FileType: "image", Operation: types.OpIsDel, Where: byID}, false},
		{"unknown operation", types.Envelope{FileType: "image", Operation: "drop"}, true},
		{"missing file type", types.Envelope{Operation: types.OpCheck}, true},
		{"bad operator", types.Envelope{FileType: "all", Operation: types.OpCheck, Where: []types.Predicate{{Field: "id", Operator: ">", Value: 1}}}, true},
		{"empty field", types.Envelope{FileType: "all", Operation: types.OpCheck, Where: []types.Predicate{{Operator: "=", Value: 1}}}, true},
		{
			"img2dicom with both contents",
			types.Envelope{FileType: types.ClassifierImg2Dicom, Operation: types.OpAdd, Data: types.Record{"image_content": "a", "file_content": "b"}},
			true,
		},
		{
			"image with foreign content field",
			types.Envelope{FileType: "image/png", Operation: types.OpAdd, Data: types.Record{"file_content": "a", "image_content": "b"}},
			true,
		},
		{
			"image with extension fields",
			types.Envelope{FileType: "image/png", Operation: types.OpAdd, Data: types.Record{"file_content": "a", "ward": "3b"}},
			false,
		},
		{"like operator", types.Envelope{FileType: "all", Operation: types.OpCheck, Where: []types.Predicate{types.Like("file_name", "%a%")}}, false},
		{"lowercase like", types.Envelope{FileType: "all", Operation: types.OpCheck, Where: []types.Predicate{{Field: "file_name", Operator: "like", Value: "%a%"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := envelope.Validate(tt.env)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, envelope.ErrValidation)
			assert.Equal(t, envelope.KindValidation, envelope.KindOf(err))
		})
	}
}

func TestValidate_PredicateMessages(t *testing.T) {
	err := envelope.Validate(types.Envelope{
		FileType:  "all",
		Operation: types.OpCheck,
		Where:     []types.Predicate{types.Eq("id", 1), {Field: "id", Operator: ">", Value: 1}},
	})
	assert.EqualError(t, err, "check validation: where_conditions[1]: unsupported operator, expected = or LIKE")

	err = envelope.Validate(types.Envelope{FileType: "all", Operation: types.OpCheck, Where: []types.Predicate{{Operator: "="}}})
	assert.EqualError(t, err, "check validation: where_conditions[0]: field is required")
}
