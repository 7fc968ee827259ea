// Package pbxtest provides project files for tests of packages that read or
// rewrite the project graph.
package pbxtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lithammer/dedent"
)

// Names used by SingleTarget.
const (
	ProjectName    = "MyApp"
	PluginID       = "com.example.watch"
	StaleFramework = "libMMWormhole-watchos.a"
	MainTargetID   = "1D6058900D05DD3D006BFB54"
	ShellPhaseID   = "304B58A110DAC018002A0835"
)

// SingleTarget is a Cordova-style project with one application target. Its
// frameworks phase links the stale watchOS wormhole archive and a system
// framework, and the target carries a shell script phase the graph does not
// model.
func SingleTarget() []byte {
	return []byte(dedent.Dedent(`
		// !$*UTF8*$!
		{
			archiveVersion = 1;
			classes = {
			};
			objectVersion = 46;
			objects = {

		/* Begin PBXBuildFile section */
				1D60589B0D05DD56006BFB54 /* main.m in Sources */ = {isa = PBXBuildFile; fileRef = 29B97316FDCFA39411CA2CEA /* main.m */; };
				301BF570109A69640062928A /* www in Resources */ = {isa = PBXBuildFile; fileRef = 301BF56E109A69640062928A /* www */; };
				7E7089471B1A1B2C00D5E1AC /* libMMWormhole-watchos.a in Frameworks */ = {isa = PBXBuildFile; fileRef = 7E7089461B1A1B2C00D5E1AC /* libMMWormhole-watchos.a */; };
				288765FD0DF74451002DB57D /* Foundation.framework in Frameworks */ = {isa = PBXBuildFile; fileRef = 288765FC0DF74451002DB57D /* Foundation.framework */; };
		/* End PBXBuildFile section */

		/* Begin PBXFileReference section */
				1D6058910D05DD3D006BFB54 /* MyApp.app */ = {isa = PBXFileReference; explicitFileType = wrapper.application; includeInIndex = 0; path = MyApp.app; sourceTree = BUILT_PRODUCTS_DIR; };
				29B97316FDCFA39411CA2CEA /* main.m */ = {isa = PBXFileReference; fileEncoding = 4; lastKnownFileType = sourcecode.c.objc; path = main.m; sourceTree = "<group>"; };
				8D1107310486CEB800E47090 /* MyApp-Info.plist */ = {isa = PBXFileReference; fileEncoding = 4; lastKnownFileType = text.plist.xml; path = "MyApp-Info.plist"; sourceTree = "<group>"; };
				301BF56E109A69640062928A /* www */ = {isa = PBXFileReference; lastKnownFileType = folder; path = www; sourceTree = SOURCE_ROOT; };
				7E7089461B1A1B2C00D5E1AC /* libMMWormhole-watchos.a */ = {isa = PBXFileReference; lastKnownFileType = archive.ar; name = "libMMWormhole-watchos.a"; path = "MyApp/Plugins/com.example.watch/libMMWormhole-watchos.a"; sourceTree = "<group>"; };
				288765FC0DF74451002DB57D /* Foundation.framework */ = {isa = PBXFileReference; lastKnownFileType = wrapper.framework; name = Foundation.framework; path = "System/Library/Frameworks/Foundation.framework"; sourceTree = SDKROOT; };
		/* End PBXFileReference section */

		/* Begin PBXFrameworksBuildPhase section */
				1D60588F0D05DD3D006BFB54 /* Frameworks */ = {
					isa = PBXFrameworksBuildPhase;
					buildActionMask = 2147483647;
					files = (
						7E7089471B1A1B2C00D5E1AC /* libMMWormhole-watchos.a in Frameworks */,
						288765FD0DF74451002DB57D /* Foundation.framework in Frameworks */,
					);
					runOnlyForDeploymentPostprocessing = 0;
				};
		/* End PBXFrameworksBuildPhase section */

		/* Begin PBXGroup section */
				19C28FACFE9D520D11CA2CBB /* Products */ = {
					isa = PBXGroup;
					children = (
						1D6058910D05DD3D006BFB54 /* MyApp.app */,
					);
					name = Products;
					sourceTree = "<group>";
				};
				29B97314FDCFA39411CA2CEA /* CustomTemplate */ = {
					isa = PBXGroup;
					children = (
						301BF56E109A69640062928A /* www */,
						29B97315FDCFA39411CA2CEA /* MyApp */,
						29B97323FDCFA39411CA2CEA /* Frameworks */,
						19C28FACFE9D520D11CA2CBB /* Products */,
					);
					name = CustomTemplate;
					sourceTree = "<group>";
				};
				29B97315FDCFA39411CA2CEA /* MyApp */ = {
					isa = PBXGroup;
					children = (
						29B97316FDCFA39411CA2CEA /* main.m */,
						8D1107310486CEB800E47090 /* MyApp-Info.plist */,
					);
					path = MyApp;
					sourceTree = "<group>";
				};
				29B97323FDCFA39411CA2CEA /* Frameworks */ = {
					isa = PBXGroup;
					children = (
						7E7089461B1A1B2C00D5E1AC /* libMMWormhole-watchos.a */,
						288765FC0DF74451002DB57D /* Foundation.framework */,
					);
					name = Frameworks;
					sourceTree = "<group>";
				};
		/* End PBXGroup section */

		/* Begin PBXNativeTarget section */
				1D6058900D05DD3D006BFB54 /* MyApp */ = {
					isa = PBXNativeTarget;
					buildConfigurationList = 1D6058960D05DD3E006BFB54 /* Build configuration list for PBXNativeTarget "MyApp" */;
					buildPhases = (
						304B58A110DAC018002A0835 /* Copy www directory */,
						1D60588D0D05DD3D006BFB54 /* Resources */,
						1D60588E0D05DD3D006BFB54 /* Sources */,
						1D60588F0D05DD3D006BFB54 /* Frameworks */,
					);
					buildRules = (
					);
					dependencies = (
					);
					name = MyApp;
					productName = MyApp;
					productReference = 1D6058910D05DD3D006BFB54 /* MyApp.app */;
					productType = "com.apple.product-type.application";
				};
		/* End PBXNativeTarget section */

		/* Begin PBXProject section */
				29B97313FDCFA39411CA2CEA /* Project object */ = {
					isa = PBXProject;
					attributes = {
						LastUpgradeCheck = 0510;
					};
					buildConfigurationList = C01FCF4E08A954540054247B /* Build configuration list for PBXProject "MyApp" */;
					compatibilityVersion = "Xcode 3.2";
					developmentRegion = English;
					hasScannedForEncodings = 1;
					knownRegions = (
						English,
						en,
						Base,
					);
					mainGroup = 29B97314FDCFA39411CA2CEA /* CustomTemplate */;
					productRefGroup = 19C28FACFE9D520D11CA2CBB /* Products */;
					projectDirPath = "";
					projectRoot = "";
					targets = (
						1D6058900D05DD3D006BFB54 /* MyApp */,
					);
				};
		/* End PBXProject section */

		/* Begin PBXResourcesBuildPhase section */
				1D60588D0D05DD3D006BFB54 /* Resources */ = {
					isa = PBXResourcesBuildPhase;
					buildActionMask = 2147483647;
					files = (
						301BF570109A69640062928A /* www in Resources */,
					);
					runOnlyForDeploymentPostprocessing = 0;
				};
		/* End PBXResourcesBuildPhase section */

		/* Begin PBXShellScriptBuildPhase section */
				304B58A110DAC018002A0835 /* Copy www directory */ = {
					isa = PBXShellScriptBuildPhase;
					buildActionMask = 2147483647;
					files = (
					);
					inputPaths = (
					);
					name = "Copy www directory";
					outputPaths = (
					);
					runOnlyForDeploymentPostprocessing = 0;
					shellPath = "/bin/sh";
					shellScript = "NODEJS_PATH=/usr/local/bin; \"$NODEJS_PATH/node\" cordova/lib/copy-www-build-step.js";
					showEnvVarsInLog = 0;
				};
		/* End PBXShellScriptBuildPhase section */

		/* Begin PBXSourcesBuildPhase section */
				1D60588E0D05DD3D006BFB54 /* Sources */ = {
					isa = PBXSourcesBuildPhase;
					buildActionMask = 2147483647;
					files = (
						1D60589B0D05DD56006BFB54 /* main.m in Sources */,
					);
					runOnlyForDeploymentPostprocessing = 0;
				};
		/* End PBXSourcesBuildPhase section */

		/* Begin XCBuildConfiguration section */
				1D6058940D05DD3E006BFB54 /* Debug */ = {
					isa = XCBuildConfiguration;
					buildSettings = {
						INFOPLIST_FILE = "MyApp/MyApp-Info.plist";
						PRODUCT_NAME = MyApp;
					};
					name = Debug;
				};
				1D6058950D05DD3E006BFB54 /* Release */ = {
					isa = XCBuildConfiguration;
					buildSettings = {
						INFOPLIST_FILE = "MyApp/MyApp-Info.plist";
						PRODUCT_NAME = MyApp;
					};
					name = Release;
				};
				C01FCF4F08A954540054247B /* Debug */ = {
					isa = XCBuildConfiguration;
					buildSettings = {
						SDKROOT = iphoneos;
					};
					name = Debug;
				};
				C01FCF5008A954540054247B /* Release */ = {
					isa = XCBuildConfiguration;
					buildSettings = {
						SDKROOT = iphoneos;
					};
					name = Release;
				};
		/* End XCBuildConfiguration section */

		/* Begin XCConfigurationList section */
				1D6058960D05DD3E006BFB54 /* Build configuration list for PBXNativeTarget "MyApp" */ = {
					isa = XCConfigurationList;
					buildConfigurations = (
						1D6058940D05DD3E006BFB54 /* Debug */,
						1D6058950D05DD3E006BFB54 /* Release */,
					);
					defaultConfigurationIsVisible = 0;
					defaultConfigurationName = Release;
				};
				C01FCF4E08A954540054247B /* Build configuration list for PBXProject "MyApp" */ = {
					isa = XCConfigurationList;
					buildConfigurations = (
						C01FCF4F08A954540054247B /* Debug */,
						C01FCF5008A954540054247B /* Release */,
					);
					defaultConfigurationIsVisible = 0;
					defaultConfigurationName = Release;
				};
		/* End XCConfigurationList section */
			};
			rootObject = 29B97313FDCFA39411CA2CEA /* Project object */;
		}
	`))
}

// WriteProject lays out <dir>/MyApp.xcodeproj/project.pbxproj with the
// given contents and returns the project file path.
func WriteProject(t testing.TB, dir string, contents []byte) string {
	t.Helper()
	projDir := filepath.Join(dir, ProjectName+".xcodeproj")
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(projDir, "project.pbxproj")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write project: %v", err)
	}
	return path
}
