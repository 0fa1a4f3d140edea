package shader

// Span preview program. Attribute locations match package gpubuf.
// uMode selects the fragment output: 0 lit vertex color, 1 normals,
// 2 uv0, 3 dominant skin weight.
const (
	SpanVertex = `#version 410 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec4 aColor;
layout(location = 3) in vec3 aWeights;
layout(location = 5) in vec3 aUV0;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;
out vec4 vColor;
out vec2 vUV;
out float vWeight;

void main() {
	gl_Position = uMVP * vec4(aPosition, 1.0);
	vNormal = mat3(uModel) * aNormal;
	vColor = aColor;
	vUV = aUV0.xy;
	vWeight = aWeights.x;
}
`

	SpanFragment = `#version 410 core
in vec3 vNormal;
in vec4 vColor;
in vec2 vUV;
in float vWeight;

uniform vec3 uLightDir;
uniform int uMode;

out vec4 fragColor;

void main() {
	vec3 n = normalize(vNormal);
	if (uMode == 1) {
		fragColor = vec4(n * 0.5 + 0.5, 1.0);
		return;
	}
	if (uMode == 2) {
		fragColor = vec4(fract(vUV), 0.0, 1.0);
		return;
	}
	if (uMode == 3) {
		fragColor = vec4(vWeight, 0.2, 1.0 - vWeight, 1.0);
		return;
	}
	float diffuse = max(dot(n, normalize(uLightDir)), 0.0) * 0.8 + 0.2;
	fragColor = vec4(vColor.rgb * diffuse, vColor.a);
}
`
)

// Shading modes understood by SpanFragment.
const (
	ModeLit int32 = iota
	ModeNormals
	ModeUV
	ModeWeights
	NumModes
)
