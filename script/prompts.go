// Package script builds the prompts sent to the LLM and decides which
// scene variant (2D or 3D) a topic needs.
package script

import "fmt"

const elaborationTemplate = `
You are an expert educator. A user wants to learn about: "%s"

Create a SIMPLE, CLEAR explanation for a 30 second animation.

Format your response as:
1. **Title**: A clear, concise title
2. **Narration Script**: Write EXACTLY 4-5 sentences explaining the concept (total speaking time: EXACTLY 30 seconds at normal speech pace)
3. **Key Visual Elements**: List 5-7 visual elements to animate (be specific about colors, shapes, movements)
4. **Animation Timeline**: Break into detailed steps with timing:
   - Step 1: (5 seconds) Initial setup and title
   - Step 2: (7 seconds) Introduce first concept with visuals
   - Step 3: (7 seconds) Show transformation or interaction
   - Step 4: (7 seconds) Demonstrate key point with emphasis
   - Step 5: (4 seconds) Show final result and hold

Include details like "highlight element", "rotate object", "fade between states", etc.
Total duration MUST be: EXACTLY 30 seconds.
Narration MUST be SHORT - only 4-5 sentences to fit in 30 seconds.
`

// ElaborationPrompt builds the step-1 prompt that expands a topic into a
// narration script, visual outline and timeline.
func ElaborationPrompt(topic string) string {
	return fmt.Sprintf(elaborationTemplate, topic)
}

const shapes2D = `
1. **Shapes ONLY**: Circle, Rectangle, Square, Polygon, Triangle, Line, Arrow, Dot
   - DO NOT use: Arc, Ellipse, Sphere, Cube, Cone, Cylinder, Prism (3D objects)
`

const shapes3D = `
1. **2D Shapes**: Circle, Rectangle, Square, Polygon, Triangle, Line, Arrow, Dot
2. **3D Shapes**: Sphere, Cube, Cone, Cylinder, Prism, Torus
   - **IMPORTANT 3D PARAMETERS**:
     - Sphere: Sphere(radius=1, resolution=(24, 24)) - resolution is tuple (latitude, longitude)
     - Cube: Cube(side_length=1)
     - Cone: Cone(base_radius=1, height=2, direction=UP)
     - Cylinder: Cylinder(radius=1, height=2)
   - **3D Positioning**: .shift(UP*2), .rotate(PI/4, axis=Z_AXIS), .set_color(BLUE)
   - **3D Camera - MUST SET FIRST IN construct()**:
     * **DEFAULT (BEST for educational content)**: self.set_camera_orientation(phi=0*DEGREES, theta=0*DEGREES) - STRAIGHT FRONT VIEW, NO TILT
     * For 45-degree isometric view: self.set_camera_orientation(phi=45*DEGREES, theta=45*DEGREES)
     * For top view: self.set_camera_orientation(phi=90*DEGREES, theta=0*DEGREES)
     * For side view: self.set_camera_orientation(phi=0*DEGREES, theta=90*DEGREES)
     * **NEVER use phi=75, theta=30 or similar - those create unwanted tilt**
`

const cameraSetup3D = `
# **CRITICAL FOR 3D - SET CAMERA FIRST**:
# Call set_camera_orientation() IMMEDIATELY FIRST in construct() before creating objects
# DEFAULT: self.set_camera_orientation(phi=0*DEGREES, theta=0*DEGREES)  # Front view - no tilt
# This gives clear, professional educational view - ALWAYS USE THIS UNLESS INSTRUCTED OTHERWISE
`

const forbidden2D = "**ABSOLUTELY FORBIDDEN**: Matrix, Tex, MathTex, SVGMobject, ImageMobject, Integer, DecimalNumber, Arc, Ellipse"
const forbidden3D = "**ABSOLUTELY FORBIDDEN**: Matrix, Tex, MathTex, SVGMobject, ImageMobject, Integer, DecimalNumber"

const codeTemplate = `
You are an ADVANCED Manim animator creating PROFESSIONAL educational animations.

SCENE TYPE: %[1]s
USE 3D: %[2]s

EDUCATIONAL CONTENT TO ANIMATE:
%[3]s

YOUR TASK: Generate perfectly formatted Python code that Manim can execute without errors.

OUTPUT FORMAT REQUIREMENTS:
1. Return ONLY clean Python code - NO markdown, NO explanations, NO comments outside code
2. Wrap entire code in triple backticks: ` + "```python ... ```" + `
3. Code MUST be directly executable with: manim -ql script.py EducationScene
4. ALL code must be within the construct() method
5. Include # NARRATION: "text" comments for each major animation step

ALLOWED MANIM FEATURES (NOTHING ELSE):
%[4]s
2. **Text ONLY**: Text() - NEVER Matrix, Tex, MathTex, or anything requiring LaTeX
3. **Advanced Animations**:
   - ReplacementTransform (morphing between shapes)
   - Indicate (highlight/pulse effect)
   - Circumscribe (draw box around)
   - Flash (flash effect)
   - Rotate (rotation)
   - FadeIn, FadeOut, Create, Write, GrowFromCenter
   - For 3D: Rotate with axis parameter, set_camera_orientation()
4. **Colors & Styles**:
   - ONLY use these exact Manim colors: RED, BLUE, GREEN, YELLOW, ORANGE, PURPLE, PINK, TEAL, GOLD, WHITE, BLACK, GRAY
   - set_color(), set_fill(), set_opacity()
   - stroke_width=2 to 10
5. **Text Formatting**:
   - Text("content", font_size=48, color=BLUE)
   - Use Unicode for symbols: "x²", "∑", "π", "≈", "×", "÷"
6. **Grouping**: VGroup, Group
7. **Positioning**:
   - .shift(UP*2 + RIGHT*3), .move_to(ORIGIN)
   - .next_to(obj, UP, buff=0.5)
8. **Timing**: Total EXACTLY 25-30 seconds (all run_times + waits)

CRITICAL RULES (VIOLATION = FAILURE):
- from manim import *
- class EducationScene(%[1]s):
- def construct(self):
- %[5]s
- **ABSOLUTELY NO invalid parameters** like uv_resolution, dash_length, angle_in_degrees
- **MINIMUM wait duration is 0.5 seconds** - NEVER use self.wait(0)
- Total duration: 25-30 seconds exactly
- Each animation step must have a # NARRATION: "..." comment
- Match educational content - no generic code
%[6]s
SAFETY CHECKS BEFORE RETURNING CODE:
- from manim import * is the first import
- class EducationScene(%[1]s): is defined correctly
- def construct(self): is indented inside the class
- All animations have run_time and MINIMUM 0.5s wait
- NO invalid parameters (especially uv_resolution, angle_in_degrees, dash_length)
- Total duration is 25-30 seconds
- Code is executable Python
- NO markdown formatting - only code

Return ONLY the code wrapped in ` + "```python ... ```" + `, nothing else.`

// CodePrompt builds the step-2 prompt that turns an elaboration into a
// Manim scene defining the EducationScene class.
func CodePrompt(elaboration string, use3D bool) string {
	sceneType := "Scene"
	use3DText := "No - Use 2D only"
	shapes := shapes2D
	forbid := forbidden2D
	camera := ""
	if use3D {
		sceneType = "ThreeDScene"
		use3DText = "Yes - Maximize 3D effects"
		shapes = shapes3D
		forbid = forbidden3D
		camera = cameraSetup3D + `- **FOR 3D SCENES**: IMMEDIATELY in construct(), ADD THIS FIRST LINE BEFORE ALL OBJECTS:
  self.set_camera_orientation(phi=0*DEGREES, theta=0*DEGREES)
  This creates a professional front-view educational perspective. NEVER use phi > 70 or theta < 10 (causes unwanted tilt).
`
	}
	return fmt.Sprintf(codeTemplate, sceneType, use3DText, elaboration, shapes, forbid, camera)
}
