package speech

// Channel records store a human-readable voice name; the synthesis
// provider wants its own voice id. The catalog is static because the
// voice list is owned by the surrounding product, not the pipeline.
var voiceCatalog = map[string]string{
	"rachel": "21m00Tcm4TlvDq8ikWAM",
	"drew":   "29vD33N1CtxCmqQRPOHJ",
	"clyde":  "2EiwWnXFnvU5JabPnv8n",
	"domi":   "AZnzlk1XvdvUeBnXmlld",
	"bella":  "EXAVITQu4vr4xnSDxMaL",
	"antoni": "ErXwobaYiN019PkySvjV",
	"josh":   "TxGEqnHWrfWFTfGW9XjX",
	"arnold": "VR6AewLTigWG4xSOukaG",
	"adam":   "pNInz6obpgDQGcFmaJgB",
	"sam":    "yoZ06aMxZJJ28mfd3POQ",
}

// DefaultVoiceID is used when a channel's voice name is unmapped.
const DefaultVoiceID = "pNInz6obpgDQGcFmaJgB" // adam

// ResolveVoice maps a channel voice name to a provider voice id,
// falling back to the default voice.
func ResolveVoice(name string) string {
	if id, ok := voiceCatalog[name]; ok {
		return id
	}
	return DefaultVoiceID
}
