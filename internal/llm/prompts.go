package llm

const parseRulePrompt = `You are a rule compiler front end. Convert the user's natural language rule into the intermediate representation JSON below.

The JSON object has three keys: "rule_type", "condition" and "consequence".
- rule_type: "standard" when the consequence asserts a new fact, "effect" when it mutates world state.
- condition: {"operator":"LEAF","subject":...,"verb":...,"object":...} for a simple pattern.
  Use {"operator":"AND","children":[...]} for conjunctions and {"operator":"OR","children":[...]} for alternatives.
  Quantified patterns use {"quantifier":"EXISTS"|"FORALL"|"NONE"|"COUNT","children":[...]}; FORALL takes [domain, property], COUNT puts the comparator in "operator" and the threshold number in "object".
- consequence: {"type":"statement","subject":...,"verb":...,"object":...,"negated":false} or
  {"type":"effect","target_world_state_key":...,"effect_operation":"set|increment|decrement|append","effect_value":...}.

Represent variables with a "?" prefix, like "?x" or "?person". Normalize verbs to a single token (e.g. "is", "trusts"). Multi-word objects stay as one string; they are tokenized downstream.

Example, for "If a man exists, he is mortal":
{"rule_type":"standard","condition":{"operator":"LEAF","subject":"?x","verb":"is","object":"a_man"},"consequence":{"type":"statement","subject":"?x","verb":"is","object":"mortal"}}

Respond ONLY with the JSON object. No markdown, no explanation.

Rule: %s`

const parseStatementPrompt = `You are a fact parser. Convert the user's natural language statement into JSON with keys "subject", "verb", "object" and "negated".

Normalize the verb to a single token. Keep the subject as one token where possible. Multi-word objects stay as one string.

Example, for "Alice does not trust Bob":
{"subject":"Alice","verb":"trusts","object":"Bob","negated":true}

Respond ONLY with the JSON object. No markdown, no explanation.

Statement: %s`
