package quiz

// bankSchema validates a quiz bank file before decoding. It mirrors the
// structural contract of the bank: stable ids, at least one linked
// concept, difficulty 1-5.
var bankSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"quizzes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":      "string",
						"minLength": 1,
					},
					"linked_concepts": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items": map[string]any{
							"type":      "string",
							"minLength": 1,
						},
					},
					"difficulty": map[string]any{
						"type":    "integer",
						"minimum": MinDifficulty,
						"maximum": MaxDifficulty,
					},
					"style": map[string]any{
						"type": "string",
					},
					"prompt": map[string]any{
						"type": "string",
					},
					"choices": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"text":        map[string]any{"type": "string"},
								"correct":     map[string]any{"type": "boolean"},
								"explanation": map[string]any{"type": "string"},
							},
							"required": []any{"text", "correct"},
						},
					},
				},
				"required": []any{"id", "linked_concepts", "difficulty", "style"},
			},
		},
	},
	"required": []any{"quizzes"},
}
