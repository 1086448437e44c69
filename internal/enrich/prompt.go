// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// systemPrompt is sent as the system message to chat-style APIs and as the
// system field to the Claude Messages API.
const systemPrompt = "You are a helpful assistant. You are good at summarizing papers and extracting keywords and institutions."

// classifyPromptTmpl asks for three tag layers, the institution, an interest
// verdict and a short summary, one `key: value` line each.
var classifyPromptTmpl = template.Must(template.New("classify").Parse(`Title: {{.Title}}
Abstract: {{.Abstract}}
First Page Content: {{.FirstPage}}

Classify the paper above with three layers of tags: tag1, tag2 and tag3.

tag1 is "mlsys" when the paper is a systems paper related in any way to LLMs, diffusion models, machine learning, deep learning or AI; otherwise it is "sys".

tag2 is a finer topic. For mlsys choose one of: LLM inference, LLM training, Other models inference, Other models training, edge computing, post-training, checkpointing, finetuning, trace analysis, cluster infrastructure, scheduling, kernels, security, federated learning, others. For sys choose one of: hardware, compiler, quantum computing, operating system, cluster management, memory, network, filesystem, computation, fault-tolerance, security, programming languages, serverless, others.

tag3 is a comma-separated list of keywords summarizing the paper's content.

Infer the main research institution(s) from the author information and the first page. There may be several. If no institution name appears, infer it from the authors' email domains.

Finally decide whether I would be interested in the paper:
- anything related to reinforcement learning, in any direction, is interesting;
- any mlsys paper (tag1 is mlsys) whose tag2 is not security, edge computing or federated learning is interesting;
- meeting either rule is enough.

Answer in exactly this format, ending with a 2-3 sentence English summary of the main method and conclusion. Do not add explanations or code blocks.

tag1: <tag1>
tag2: <tag2>
tag3: <tag3, tag3, ...>
institution: <institution>
is_interested: <yes/no>
llm_summary: <2-3 sentences simple summary (method+conclusion)>
`))

// LoadPrompt parses a custom prompt template from path. The template sees
// the fields of Input. An empty path returns the built-in template.
func LoadPrompt(path string) (*template.Template, error) {
	if path == "" {
		return classifyPromptTmpl, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt file %s: %w", path, err)
	}
	tmpl, err := template.New("classify").Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing prompt file %s: %w", path, err)
	}
	return tmpl, nil
}

// renderPrompt executes tmpl (or the built-in template when nil) for in.
func renderPrompt(tmpl *template.Template, in Input) (string, error) {
	if tmpl == nil {
		tmpl = classifyPromptTmpl
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
