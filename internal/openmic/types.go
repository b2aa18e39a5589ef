package openmic

// AgentInput is what an operator supplies when creating or updating an agent.
type AgentInput struct {
	Name            string `json:"name,omitempty"`
	Prompt          string `json:"prompt,omitempty"`
	FirstMessage    string `json:"first_message,omitempty"`
	KnowledgeBaseID string `json:"knowledge_base_id,omitempty"`
}

type CallSettings struct {
	MaxCallDuration          int    `json:"max_call_duration"`
	SilenceTimeout           int    `json:"silence_timeout"`
	SilenceTimeoutMaxRetries int    `json:"silence_timeout_max_retries"`
	SilenceTimeoutMessage    string `json:"silence_timeout_message"`
	CallRecordingEnabled     bool   `json:"call_recording_enabled"`
	VoicemailDetection       bool   `json:"voicemail_detection_enabled"`
	HIPAACompliance          bool   `json:"hipaa_compliance_enabled"`
	PCICompliance            bool   `json:"pci_compliance_enabled"`
}

type AdvancedSettings struct {
	AgentPersonality         string  `json:"agent_personality"`
	HumanizeConversation     bool    `json:"humanize_conversation"`
	BackgroundNoiseReduction bool    `json:"background_noise_reduction"`
	AllowInterruptions       bool    `json:"allow_interruptions"`
	MinInterruptionDuration  float64 `json:"min_interruption_duration"`
	AgentResponseLength      string  `json:"agent_response_length"`
	ShortPause               float64 `json:"short_pause"`
	LongPause                float64 `json:"long_pause"`
}

type PostCallSettings struct {
	SummaryPrompt               string `json:"summary_prompt"`
	SuccessEvaluationPrompt     string `json:"success_evaluation_prompt"`
	SuccessEvaluationRubricType string `json:"success_evaluation_rubric_type"`
}

// CreateAgentRequest is the full POST /bots body.
type CreateAgentRequest struct {
	AgentInput

	VoiceProvider       string  `json:"voice_provider"`
	Voice               string  `json:"voice"`
	VoiceModel          string  `json:"voice_model"`
	VoiceSpeed          float64 `json:"voice_speed"`
	LLMModelName        string  `json:"llm_model_name"`
	LLMModelTemperature float64 `json:"llm_model_temperature"`
	STTProvider         string  `json:"stt_provider"`
	STTModel            string  `json:"stt_model"`

	CallSettings     CallSettings     `json:"call_settings"`
	AdvancedSettings AdvancedSettings `json:"advanced_settings"`
	PostCallSettings PostCallSettings `json:"post_call_settings"`
}

// NewCreateAgentRequest fills the platform defaults used by the console.
func NewCreateAgentRequest(in AgentInput) CreateAgentRequest {
	return CreateAgentRequest{
		AgentInput:          in,
		VoiceProvider:       "OpenAI",
		Voice:               "alloy",
		VoiceModel:          "tts-1",
		VoiceSpeed:          1,
		LLMModelName:        "gpt-4",
		LLMModelTemperature: 0.7,
		STTProvider:         "Deepgram",
		STTModel:            "nova-2",
		CallSettings: CallSettings{
			MaxCallDuration:          10,
			SilenceTimeout:           15,
			SilenceTimeoutMaxRetries: 3,
			SilenceTimeoutMessage:    "I didn't hear anything. Are you still there?",
			CallRecordingEnabled:     true,
			VoicemailDetection:       true,
		},
		AdvancedSettings: AdvancedSettings{
			AgentPersonality:         "friendly",
			HumanizeConversation:     true,
			BackgroundNoiseReduction: true,
			AllowInterruptions:       true,
			MinInterruptionDuration:  0.5,
			AgentResponseLength:      "normal",
			ShortPause:               0.3,
			LongPause:                1,
		},
		PostCallSettings: PostCallSettings{
			SummaryPrompt:               "Provide a brief summary of the customer interaction and any action items.",
			SuccessEvaluationPrompt:     "Rate the success of this call on a scale of 1-10 based on customer satisfaction.",
			SuccessEvaluationRubricType: "NUMERIC_SCALE",
		},
	}
}

// Agent is a bot configuration as returned by the platform.
// Only the fields the console reads are typed.
type Agent struct {
	ID              string `json:"id"`
	UID             string `json:"uid"`
	Name            string `json:"name"`
	Prompt          string `json:"prompt,omitempty"`
	FirstMessage    string `json:"first_message,omitempty"`
	KnowledgeBaseID any    `json:"knowledge_base_id,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// CallLog is a remote call record.
type CallLog struct {
	ID         string  `json:"id"`
	BotID      string  `json:"bot_id"`
	Status     string  `json:"status"`
	Duration   float64 `json:"duration"`
	CreatedAt  string  `json:"created_at"`
	Transcript any     `json:"transcript,omitempty"`
	Summary    string  `json:"summary,omitempty"`
}
