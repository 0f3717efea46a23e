package constants

import "github.com/google/generative-ai-go/genai"

// PlanReplySchema is the JSON schema of a planning reply
const PlanReplySchema = `{
    "type": "object",
    "required": ["type"],
    "properties": {
      "type": {
        "type": "string",
        "enum": ["chat", "ask", "sql", "boolean_check"],
        "description": "What the assistant does with this turn."
      },
      "message": {
        "type": "string",
        "description": "Reply or clarifying question shown to the user (chat, ask)."
      },
      "pending": {
        "type": "string",
        "enum": ["count_dimension", "select_subject"],
        "description": "What the clarifying question waits for (ask)."
      },
      "sql": {
        "type": "string",
        "description": "A single statement against the students table (sql)."
      },
      "response_kind": {
        "type": "string",
        "enum": ["select", "count", "update", "delete", "insert"],
        "description": "How the statement's result is presented (sql)."
      },
      "subject": {
        "type": "string",
        "description": "Student name the yes/no question is about (boolean_check)."
      },
      "expected_value": {
        "type": "string",
        "description": "Claimed value to compare against the student's record (boolean_check)."
      }
    },
    "additionalProperties": false
  }`

var GeminiPlanReplySchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"type"},
	Properties: map[string]*genai.Schema{
		"type": {
			Type: genai.TypeString,
			Enum: []string{"chat", "ask", "sql", "boolean_check"},
		},
		"message": {
			Type: genai.TypeString,
		},
		"pending": {
			Type: genai.TypeString,
			Enum: []string{"count_dimension", "select_subject"},
		},
		"sql": {
			Type: genai.TypeString,
		},
		"response_kind": {
			Type: genai.TypeString,
			Enum: []string{"select", "count", "update", "delete", "insert"},
		},
		"subject": {
			Type: genai.TypeString,
		},
		"expected_value": {
			Type: genai.TypeString,
		},
	},
}
