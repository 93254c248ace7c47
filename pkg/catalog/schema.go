package catalog

import "github.com/xeipuuv/gojsonschema"

// descriptionSchemaJSON describes the structure a device capability description must
// have. Rules that depend on bFrameIntervalType (interval counts and ranges, min <= max)
// are checked while decoding, since only the entries it selects are read.
const descriptionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["formats"],
  "properties": {
    "formats": {
      "type": "array",
      "items": { "$ref": "#/definitions/format" }
    }
  },
  "definitions": {
    "format": {
      "type": "object",
      "required": ["bDescriptorSubtype", "bFormatIndex", "bDefaultFrameIndex", "frame_descs"],
      "properties": {
        "bDescriptorSubtype": { "type": "integer", "minimum": 0, "maximum": 255 },
        "bFormatIndex": { "type": "integer", "minimum": 0 },
        "bDefaultFrameIndex": { "type": "integer", "minimum": 0 },
        "frame_descs": {
          "type": "array",
          "items": { "$ref": "#/definitions/frame" }
        }
      }
    },
    "frame": {
      "type": "object",
      "required": ["bDescriptorSubtype", "wWidth", "wHeight", "dwDefaultFrameInterval", "bFrameIntervalType"],
      "properties": {
        "bDescriptorSubtype": { "type": "integer", "minimum": 0, "maximum": 255 },
        "wWidth": { "type": "integer", "minimum": 1 },
        "wHeight": { "type": "integer", "minimum": 1 },
        "dwDefaultFrameInterval": { "type": "integer", "minimum": 0 },
        "bFrameIntervalType": { "type": "integer", "minimum": 0, "maximum": 255 },
        "dwMinFrameInterval": { "type": "integer", "minimum": 0 },
        "dwMaxFrameInterval": { "type": "integer", "minimum": 0 },
        "dwFrameIntervalStep": { "type": "integer", "minimum": 0 },
        "intervals": {
          "type": "array",
          "items": { "type": "integer" }
        }
      }
    }
  }
}`

var descriptionSchema = mustCompileSchema(descriptionSchemaJSON)

func mustCompileSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic("catalog: invalid description schema: " + err.Error())
	}
	return schema
}
