package appcmd

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// MatchKey returns a deterministic SHA-1 over a command definition's stable
// fields. Two definitions with equal match keys need no re-registration.
// Both locally built and remotely fetched commands normalize to the same key:
// volatile fields (IDs, version, application ID) are excluded and numeric
// choice values are folded to float64, matching what JSON decoding yields.
func MatchKey(def *discordgo.ApplicationCommand) string {
	data, _ := json.Marshal(normalizeCommand(def))
	return fmt.Sprintf("%x", sha1.Sum(data))
}

// scopeHash is the match key of a whole scope: the sorted list of its
// commands' normalized definitions.
func scopeHash(defs []*discordgo.ApplicationCommand) string {
	entries := make([]map[string]any, len(defs))
	for i, def := range defs {
		entries[i] = normalizeCommand(def)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i]["name"] != entries[j]["name"] {
			return entries[i]["name"].(string) < entries[j]["name"].(string)
		}
		return entries[i]["type"].(discordgo.ApplicationCommandType) < entries[j]["type"].(discordgo.ApplicationCommandType)
	})

	data, _ := json.Marshal(entries)

	return fmt.Sprintf("%x", sha1.Sum(data))
}

func normalizeCommand(def *discordgo.ApplicationCommand) map[string]any {
	cmdType := def.Type
	if cmdType == 0 {
		cmdType = discordgo.ChatApplicationCommand
	}

	stable := map[string]any{
		"type":        cmdType,
		"name":        def.Name,
		"description": def.Description,
	}

	// Discord reports the default when the field was never set.
	dmPermission := true
	if def.DMPermission != nil {
		dmPermission = *def.DMPermission
	}
	stable["dm_permission"] = dmPermission

	if def.DefaultMemberPermissions != nil {
		stable["default_member_permissions"] = *def.DefaultMemberPermissions
	}

	if len(def.Options) > 0 {
		stable["options"] = normalizeOptions(def.Options)
	}

	return stable
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, opt := range opts {
		entry := map[string]any{
			"type":        opt.Type,
			"name":        opt.Name,
			"description": opt.Description,
			"required":    opt.Required,
		}

		if len(opt.Choices) > 0 {
			choices := make([]map[string]any, len(opt.Choices))
			for j, choice := range opt.Choices {
				choices[j] = map[string]any{
					"name":  choice.Name,
					"value": normalizeValue(choice.Value),
				}
			}
			entry["choices"] = choices
		}

		if len(opt.ChannelTypes) > 0 {
			channelTypes := append([]discordgo.ChannelType(nil), opt.ChannelTypes...)
			sort.Slice(channelTypes, func(i, j int) bool { return channelTypes[i] < channelTypes[j] })
			entry["channel_types"] = channelTypes
		}

		if opt.MinValue != nil {
			entry["min_value"] = *opt.MinValue
		}

		if opt.MaxValue != 0 {
			entry["max_value"] = opt.MaxValue
		}

		if opt.MinLength != nil {
			entry["min_length"] = *opt.MinLength
		}

		if opt.MaxLength != 0 {
			entry["max_length"] = opt.MaxLength
		}

		if opt.Autocomplete {
			entry["autocomplete"] = true
		}

		if len(opt.Options) > 0 {
			entry["options"] = normalizeOptions(opt.Options)
		}

		out[i] = entry
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})

	return out
}

// normalizeValue folds integer types to float64 so locally built choice
// values compare equal to JSON-decoded remote ones.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
