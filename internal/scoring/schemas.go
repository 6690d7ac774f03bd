package scoring

// JSON Schemas for model output. Validation happens before decode so a
// malformed response degrades cleanly instead of half-populating a report.

const atsReportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["overall", "format", "keywords", "clarity", "suggestions"],
  "properties": {
    "overall": {"type": "integer", "minimum": 0, "maximum": 100},
    "format": {"type": "integer", "minimum": 0, "maximum": 100},
    "keywords": {"type": "integer", "minimum": 0, "maximum": 100},
    "clarity": {"type": "integer", "minimum": 0, "maximum": 100},
    "suggestions": {
      "type": "array",
      "items": {"type": "string"},
      "maxItems": 10
    }
  },
  "additionalProperties": true
}`

const matchReportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["score", "matching_skills", "missing_skills", "summary"],
  "properties": {
    "score": {"type": "integer", "minimum": 0, "maximum": 100},
    "matching_skills": {"type": "array", "items": {"type": "string"}},
    "missing_skills": {"type": "array", "items": {"type": "string"}},
    "summary": {"type": "string"}
  },
  "additionalProperties": true
}`
