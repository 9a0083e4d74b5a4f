package appconfig

import "fmt"

// Shared configuration document fixtures for tests.

const testClientDocument = `{
	"sequence_number": 1,
	"collections": [
		{"collection_id": "web", "name": "Web"}
	],
	"environments": [
		{
			"environment_id": "production",
			"name": "Production",
			"features": [
				{
					"feature_id": "dark-mode",
					"name": "Dark mode",
					"type": "BOOLEAN",
					"enabled": true,
					"enabled_value": false,
					"disabled_value": false,
					"rollout_percentage": 0,
					"collections": ["web"],
					"segment_rules": [
						{
							"order": 1,
							"rules": [{"segments": ["beta-users"]}],
							"value": true,
							"rollout_percentage": 100
						}
					]
				},
				{
					"feature_id": "greeting",
					"name": "Greeting",
					"type": "STRING",
					"enabled": true,
					"enabled_value": "hello",
					"disabled_value": "",
					"rollout_percentage": 100,
					"segment_rules": []
				}
			],
			"properties": [
				{
					"property_id": "request-limit",
					"name": "Request limit",
					"type": "NUMERIC",
					"value": 25,
					"rollout_percentage": 100,
					"collections": ["web"],
					"segment_rules": [
						{
							"order": 1,
							"rules": [{"segments": ["beta-users"]}],
							"value": 100,
							"rollout_percentage": 100
						}
					]
				}
			]
		}
	],
	"segments": [
		{
			"segment_id": "beta-users",
			"name": "Beta users",
			"rules": [
				{
					"conditions": [
						{"attribute_name": "plan", "operator": "is", "values": ["beta"]}
					]
				}
			]
		}
	]
}`

// testDocumentWithSequence builds a minimal document whose greeting value
// records which sequence it came from.
func testDocumentWithSequence(sequence uint64) string {
	return fmt.Sprintf(`{
		"sequence_number": %d,
		"environments": [{
			"environment_id": "production",
			"features": [{
				"feature_id": "greeting", "type": "STRING", "enabled": true,
				"enabled_value": "hello-%d", "disabled_value": "",
				"rollout_percentage": 100, "segment_rules": []
			}],
			"properties": []
		}],
		"segments": []
	}`, sequence, sequence)
}
