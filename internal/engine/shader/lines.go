package shader

// Flat-colored line list program used by debug overlays.
const (
	LineVertex = `#version 410 core
layout(location = 0) in vec3 aPosition;
uniform mat4 uMVP;
void main() {
	gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

	LineFragment = `#version 410 core
uniform vec3 uColor;
out vec4 fragColor;
void main() {
	fragColor = vec4(uColor, 1.0);
}
`
)
